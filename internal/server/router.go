package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pashuai/pashuai-backend/internal/handlers"
	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/middleware"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthHandler    *handlers.AuthHandler
	ChatHandler    *handlers.ChatHandler
	AdminHandler   *handlers.AdminHandler
	InfoHandler    *handlers.InfoHandler
	AuthMiddleware *middleware.AuthMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(cfg.Log))
	router.Use(gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		cfg.Log.Error("Panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Public
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.POST("/auth/logout", cfg.AuthHandler.Logout)
		api.GET("/weather/:location", cfg.InfoHandler.GetWeather)
		api.GET("/market-prices", cfg.InfoHandler.GetMarketPrices)
		api.GET("/crops", cfg.InfoHandler.GetCrops)

		// Authenticated
		authed := api.Group("/")
		authed.Use(cfg.AuthMiddleware.RequireAuth())
		authed.GET("/auth/me", cfg.AuthHandler.Me)
		authed.POST("/conversations", cfg.ChatHandler.CreateConversation)
		authed.GET("/messages/:conversationId", cfg.ChatHandler.GetMessages)
		authed.POST("/chat", cfg.ChatHandler.Chat)
		authed.POST("/analyze-image", cfg.ChatHandler.AnalyzeImage)

		// Admin
		admin := api.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
		admin.GET("/users", cfg.AdminHandler.GetUsers)
		admin.GET("/conversations", cfg.AdminHandler.GetConversations)
		admin.GET("/messages", cfg.AdminHandler.GetMessages)
		admin.GET("/stats", cfg.AdminHandler.GetStats)
	}

	return router
}

// requestLogger logs one line per API request: method, path, status, duration.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if !strings.HasPrefix(c.Request.URL.Path, "/api") {
			return
		}
		log.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
