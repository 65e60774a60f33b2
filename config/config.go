package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults in code and must come from config.json, a .env file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	TokenTTLHours      int
	CookieSecure       bool
	AdminInviteCode    string
	BcryptCost         int
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database: DBDriver is one of mysql, postgres, sqlite
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis backs the token revocation registry when RedisHost is set
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// DefaultPath is where Load looks for the optional JSON config file.
var DefaultPath = filepath.Join("config", "config.json")

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// Load loads the configuration from DefaultPath. It should be called once during boot.
func Load() AppConfig {
	return LoadFile(DefaultPath)
}

// LoadFile builds the configuration with precedence:
// JSON file -> defaults -> .env -> environment variables.
func LoadFile(path string) AppConfig {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
	}
	applyDefaults(&c)
	// .env never overrides variables already present in the environment
	_ = godotenv.Load()
	applyEnvOverrides(&c)

	Set(c)
	return c
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	c, ok := cfg, loaded
	mu.RUnlock()
	if !ok {
		return Load()
	}
	return c
}

// Set replaces the cached configuration. CLI flag overrides and tests go through here.
func Set(c AppConfig) {
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
}

// Validate reports settings the HTTP server cannot run without.
func (c AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// loadJSONConfig reads the JSON file into out if present. Both flat keys and grouped
// sections ("app", "auth", "database", "redis", "log") are accepted; sections win.
// A missing file is not an error.
func loadJSONConfig(path string, out *AppConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return err
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(b, &sections); err != nil {
		return err
	}
	for _, name := range []string{"app", "auth", "database", "redis", "log"} {
		raw, ok := sections[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("section %s: %w", name, err)
		}
	}
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "5001"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 7 * 24
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBName == "" {
		c.DBName = "finnews"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	envString(&c.AppPort, "APP_PORT", "PORT")
	envString(&c.JWTSecret, "JWT_SECRET")
	envInt(&c.TokenTTLHours, "TOKEN_TTL_HOURS")
	envBool(&c.CookieSecure, "COOKIE_SECURE")
	envString(&c.AdminInviteCode, "ADMIN_INVITE_CODE")
	envInt(&c.BcryptCost, "BCRYPT_COST")
	envInt(&c.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	if v := getEnv("CORS_ALLOWED_ORIGINS", "FRONTEND_URL"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}

	envString(&c.GinMode, "GIN_MODE")
	envString(&c.GinPath, "GIN_PATH", "GIN_LOG_PATH")

	envString(&c.DBDriver, "DB_DRIVER")
	envString(&c.DatabaseURI, "DATABASE_URI", "DATABASE_URL")
	envString(&c.DBHost, "DB_HOST")
	envString(&c.DBPort, "DB_PORT")
	envString(&c.DBUser, "DB_USER")
	envString(&c.DBPassword, "DB_PASSWORD")
	envString(&c.DBName, "DB_NAME")

	envString(&c.RedisHost, "REDIS_HOST")
	envInt(&c.RedisPort, "REDIS_PORT")
	envInt(&c.RedisDB, "REDIS_DB")
	envString(&c.RedisPassword, "REDIS_PASSWORD")

	envString(&c.LogLevel, "LOG_LEVEL")
	envString(&c.LogPath, "LOG_PATH")
	envInt(&c.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	envInt(&c.LogMaxBackups, "LOG_MAX_BACKUPS")
	envInt(&c.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	envBool(&c.LogCompress, "LOG_COMPRESS")
}

// getEnv returns the first non-empty value among keys.
func getEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envString(dst *string, keys ...string) {
	if v := getEnv(keys...); v != "" {
		*dst = v
	}
}

func envInt(dst *int, keys ...string) {
	if v := getEnv(keys...); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, keys ...string) {
	if v := getEnv(keys...); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
