package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pashuai/pashuai-backend/internal/db"
	"github.com/pashuai/pashuai-backend/internal/handlers"
	"github.com/pashuai/pashuai-backend/internal/logger"
	"github.com/pashuai/pashuai-backend/internal/middleware"
	"github.com/pashuai/pashuai-backend/internal/repos"
	"github.com/pashuai/pashuai-backend/internal/server"
	"github.com/pashuai/pashuai-backend/internal/services"
	"github.com/pashuai/pashuai-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env. The signing secret and model API key have no safe default.
	appEnv := utils.GetEnv("APP_ENV", "development", log)
	production := strings.EqualFold(appEnv, "production")
	jwtSecretKey := utils.MustGetEnv("JWT_SECRET", log)
	geminiAPIKey := utils.MustGetEnv("GEMINI_API_KEY", log)
	geminiBaseURL := utils.GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/", log)
	geminiModel := utils.GetEnv("GEMINI_MODEL", "gemini-2.0-flash-exp", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	userRepo := repos.NewUserRepo(thePG, log)
	conversationRepo := repos.NewConversationRepo(thePG, log)
	messageRepo := repos.NewMessageRepo(thePG, log)

	// Services
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey)
	advisorService := services.NewAdvisorService(log, geminiAPIKey, geminiBaseURL, geminiModel)
	chatService := services.NewChatService(thePG, log, conversationRepo, messageRepo, advisorService)
	adminService := services.NewAdminService(thePG, log, userRepo, conversationRepo, messageRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, production)
	chatHandler := handlers.NewChatHandler(log, chatService)
	adminHandler := handlers.NewAdminHandler(adminService)
	infoHandler := handlers.NewInfoHandler()

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:            log,
		AuthHandler:    authHandler,
		ChatHandler:    chatHandler,
		AdminHandler:   adminHandler,
		InfoHandler:    infoHandler,
		AuthMiddleware: authMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
