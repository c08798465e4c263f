package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartgov-backend/database"
	"smartgov-backend/handlers"
	"smartgov-backend/middleware"
	"smartgov-backend/services"
	"smartgov-backend/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Initialize database
	database.InitDatabase()
	db := database.GetDB()

	// Initialize AI provider; a failure degrades chat responses instead of
	// blocking startup
	provider, providerErr := services.GetAIProvider()
	if providerErr != nil {
		log.Printf("⚠️  AI provider unavailable, chat will degrade: %v", providerErr)
	}

	// Wire services
	historyService := services.NewHistoryService(db)
	matcherService := services.NewMatcherService(db, historyService)
	catalogService := services.NewCatalogService(db)
	checklistService := services.NewChecklistService(db)
	templateService := services.NewPromptTemplateService(db)
	chatService := services.NewChatService(db, templateService, provider, providerErr)
	reminderService := services.NewReminderService(db)
	userService := services.NewUserService(db, services.GetAadharVerifier())

	// Wire handlers
	userHandler := handlers.NewUserHandler(userService)
	schemeHandler := handlers.NewSchemeHandler(catalogService, matcherService, historyService, userService)
	checklistHandler := handlers.NewChecklistHandler(checklistService, userService)
	chatHandler := handlers.NewChatHandler(chatService, userService, templateService)
	reminderHandler := handlers.NewReminderHandler(reminderService)

	// Start reminder worker in background with graceful shutdown support
	reminderWorker := worker.NewReminderWorker(db)
	go func() {
		log.Println("Starting reminder worker...")
		reminderWorker.Start()
	}()

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Home page
	router.GET("/", handlers.HomePage)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// Public routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}
	router.GET("/schemes", schemeHandler.List)
	router.GET("/schemes/:id", schemeHandler.Get)

	// Authenticated routes
	api := router.Group("/")
	api.Use(middleware.JWTMiddleware())
	{
		users := api.Group("/users")
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.POST("/verify-aadhar", userHandler.VerifyAadhar)
		}

		schemes := api.Group("/schemes")
		{
			schemes.GET("/personalized", schemeHandler.Personalized)
			schemes.POST("/track-view", schemeHandler.TrackView)
			schemes.POST("/save", schemeHandler.SaveScheme)
			schemes.GET("/saved", schemeHandler.SavedSchemes)
			schemes.GET("/history", schemeHandler.UserHistory)
			schemes.GET("/applied", schemeHandler.AppliedSchemes)
		}

		checklists := api.Group("/checklists")
		{
			checklists.POST("/generate", checklistHandler.Generate)
			checklists.GET("", checklistHandler.List)
			checklists.PUT("/update", checklistHandler.Update)
		}

		reminders := api.Group("/reminders")
		{
			reminders.POST("", reminderHandler.Create)
			reminders.GET("", reminderHandler.List)
			reminders.PUT("/mark-sent", reminderHandler.MarkSent)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/message", chatHandler.SendMessage)
			chat.POST("/voice", chatHandler.VoiceInput)
			chat.POST("/rate", chatHandler.RateResponse)
			chat.GET("/sessions", chatHandler.Sessions)
			chat.GET("/sessions/:id/messages", chatHandler.SessionMessages)
			chat.GET("/templates/by-category", chatHandler.TemplateByCategory)
		}
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Setup HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("🛑 Shutting down server...")

	// Stop reminder worker first
	log.Println("⏰ Stopping reminder worker...")
	reminderWorker.Stop()

	// Give a deadline for HTTP server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
