package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	c := LoadFile(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, "5001", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, 168, c.TokenTTLHours)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Error(t, c.Validate(), "missing secret must not validate")
}

func TestLoadFile_GroupedSectionsAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
  "AppPort": "7000",
  "app": {"AppPort": "8080", "JWTSecret": "from-file", "AllowedOrigins": ["https://finnews.example"]},
  "database": {"DBDriver": "sqlite", "DBName": "news"},
  "log": {"LogLevel": "debug"}
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("LOG_LEVEL", "warn")

	c := LoadFile(path)

	assert.Equal(t, "8080", c.AppPort, "grouped section overrides flat key")
	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, []string{"https://finnews.example"}, c.AllowedOrigins)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 120, c.RateLimitPerMinute)
	assert.Equal(t, "warn", c.LogLevel, "environment wins over file")
	assert.NoError(t, c.Validate())
	assert.Equal(t, c, Get())
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	c := AppConfig{JWTSecret: "x", DBDriver: "oracle"}
	assert.Error(t, c.Validate())
}

func TestOpenDatabase_SQLite(t *testing.T) {
	c := AppConfig{DBDriver: "sqlite", DatabaseURI: filepath.Join(t.TempDir(), "test.db"), LogLevel: "silent"}
	conn, err := OpenDatabase(c)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	assert.True(t, conn.Migrator().HasTable("articles"))
	assert.True(t, conn.Migrator().HasTable("revoked_tokens"))
}
