package main

import (
	"log"
	"os"
	"time"

	"newsiq/database"
	"newsiq/handlers"
	"newsiq/handlers/admin"
	"newsiq/middleware"
	"newsiq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database (runs migrations and seeds the badge catalog)
	database.InitDB()

	// Optional Redis: leaderboard cache and reset-job locks
	services.InitRedis()

	// Core services
	services.InitGamification()
	services.InitChatRelay()
	services.InitCleanupService()

	// Seed articles from disk
	log.Println("Loading seed articles...")
	services.LoadArticlesFromFiles()

	// Weekly/monthly point resets and nightly cleanup
	services.InitScheduler()
	defer func() {
		if s := services.GetScheduler(); s != nil {
			s.Stop()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// Article routes (interaction state included when a token is present)
	api.Get("/articles", middleware.OptionalAuthMiddleware, handlers.GetArticles)
	api.Get("/articles/categories", handlers.GetCategories)
	api.Get("/articles/:id", middleware.OptionalAuthMiddleware, handlers.GetArticle)
	api.Get("/articles/:id/quiz", handlers.GetQuizForArticle)
	api.Post("/articles/:id/progress", middleware.AuthMiddleware, handlers.UpdateReadProgress)
	api.Post("/articles/:id/save", middleware.AuthMiddleware, handlers.SaveArticle)

	// Quiz routes
	quizGroup := api.Group("/quizzes")
	quizGroup.Use(middleware.AuthMiddleware)
	quizGroup.Post("/:id/submit", handlers.SubmitQuiz)
	quizGroup.Get("/attempts", handlers.GetQuizAttempts)

	// User routes (require authentication)
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)
	userGroup.Put("/me", handlers.UpdateCurrentUser)
	userGroup.Get("/me/stats", handlers.GetUserStats)
	userGroup.Get("/me/saved", handlers.GetSavedArticles)
	userGroup.Get("/me/streak", handlers.GetReadingStreak)
	userGroup.Get("/me/achievements", handlers.GetUserAchievements)
	userGroup.Get("/me/preferences", handlers.GetPreferences)
	userGroup.Post("/me/preferences", handlers.SavePreferences)

	// Achievement catalog (public)
	api.Get("/achievements", handlers.GetAchievementCatalog)

	// Leaderboard routes
	leaderboardGroup := api.Group("/leaderboard")
	leaderboardGroup.Get("/", handlers.GetLeaderboard)
	leaderboardGroup.Get("/user/:id", handlers.GetUserRank)

	// Chat routes
	chatGroup := api.Group("/chat")
	chatGroup.Use(middleware.AuthMiddleware)
	chatGroup.Post("/", middleware.ChatRateLimitMiddleware(), handlers.PostChatMessage)
	chatGroup.Get("/:sessionId/history", handlers.GetChatHistory)

	// Chat WebSocket stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat/:sessionId", middleware.OptionalAuthMiddleware, websocket.New(handlers.ChatStream))

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Post("/users/:id/ban", admin.BanUser)
	adminProtected.Delete("/users/:id", admin.DeleteUser)

	// Admin achievement management
	adminProtected.Get("/achievements", admin.GetAchievements)
	adminProtected.Post("/achievements", admin.CreateAchievement)
	adminProtected.Put("/achievements/:id", admin.UpdateAchievement)
	adminProtected.Delete("/achievements/:id", admin.DeleteAchievement)
	adminProtected.Post("/achievements/recalculate", admin.RecalculateAchievements)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("💬 Chat webhook configured: %v", os.Getenv("CHAT_WEBHOOK_URL") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
