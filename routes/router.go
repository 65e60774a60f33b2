package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/finnews/finnews/config"
	"github.com/finnews/finnews/controllers"
	"github.com/finnews/finnews/middleware"
	"github.com/finnews/finnews/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, revocations utils.RevocationStore) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	if err := utils.RegisterValidators(); err != nil {
		utils.Sugar.Warnf("register validators: %v", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file; the app logger is the fallback
	gl := utils.Logger
	if cfg.GinPath != "" {
		if l, err := utils.NewRollingFileLogger(cfg.GinPath, cfg); err == nil {
			gl = l
		} else {
			utils.Sugar.Warnf("gin access log disabled: %v", err)
		}
	}
	r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(gl, true))
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case len(cfg.AllowedOrigins) == 0:
		corsCfg.AllowOriginFunc = func(string) bool { return false }
	case len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*":
		// credentials cannot be combined with a wildcard origin, so reflect the caller instead
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	default:
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	newsController := controllers.NewNewsController(db)
	commentController := controllers.NewCommentController(db)
	authController := controllers.NewAuthController(db, revocations)
	statsController := controllers.NewStatsController(db)

	authRequired := middleware.AuthRequired(revocations)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminRequired()}

	api := r.Group("/api")
	api.GET("", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"message": "Welcome to Finnews API"})
	})
	api.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	api.GET("/stats", statsController.GetStats)

	news := api.Group("/news")
	news.GET("", newsController.ListNews)
	news.GET("/trending", newsController.Trending)
	news.GET("/:id", newsController.GetNews)
	news.POST("", append(adminOnly, newsController.CreateNews)...)
	news.PUT("/:id", append(adminOnly, newsController.UpdateNews)...)
	news.DELETE("/:id", append(adminOnly, newsController.DeleteNews)...)
	news.POST("/:id/clap", authRequired, newsController.ClapNews)
	news.GET("/:id/comments", commentController.ListComments)
	news.POST("/:id/comments", authRequired, commentController.CreateComment)

	comments := api.Group("/comments")
	comments.Use(authRequired)
	comments.PUT("/:id", commentController.UpdateComment)
	comments.DELETE("/:id", commentController.DeleteComment)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware("auth"))
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.RateLimitMiddleware("admin"))
	adminGroup.POST("/signup", authController.AdminSignup)
	adminGroup.POST("/login", authController.AdminLogin)
	adminGroup.POST("/logout", append(adminOnly, authController.AdminLogout)...)
	adminGroup.GET("/me", append(adminOnly, authController.AdminProfile)...)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
