package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"vocalhire/campaign-api/internal/config"
	"vocalhire/campaign-api/internal/handlers"
	"vocalhire/campaign-api/internal/middleware"
	"vocalhire/campaign-api/internal/repositories"
	"vocalhire/campaign-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	campaignRepo := repositories.NewCampaignRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	authService := services.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiry)
	workbookService := services.NewWorkbookService()

	artifactStorage := services.NewCloudinaryStorage(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
		cfg.Cloudinary.Folder,
		cfg.Cloudinary.Timeout,
	)

	callDispatcher := services.NewElevenLabsDispatcher(
		cfg.ElevenLabs.APIKey,
		cfg.ElevenLabs.AgentID,
		cfg.ElevenLabs.PhoneNumberID,
		cfg.ElevenLabs.Timeout,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini analyzer
	analyzer, err := services.NewGeminiAnalyzer(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini analyzer: %v", err)
	}
	log.Println("✅ Gemini analyzer initialized successfully")

	// Initialize orchestrator
	campaignService := services.NewCampaignService(
		campaignRepo,
		workbookService,
		artifactStorage,
		callDispatcher,
		analyzer,
		cfg.Schedule.Timezone,
	)
	log.Println("✅ Campaign orchestrator initialized")

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userRepo, authService)
	campaignHandler := handlers.NewCampaignHandler(campaignRepo, campaignService)
	webhookHandler := handlers.NewWebhookHandler(campaignService, cfg.ElevenLabs.WebhookSecret)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Campaign Orchestration API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api")

	// User routes
	api.Post("/register", userHandler.HandleRegister)
	api.Post("/login", userHandler.HandleLogin)

	// Campaign routes (protected)
	requireAuth := middleware.RequireAuth(authService)
	api.Post("/campaigns", requireAuth, campaignHandler.HandleCreate)
	api.Get("/campaigns", requireAuth, campaignHandler.HandleList)
	api.Get("/campaigns/:id", requireAuth, campaignHandler.HandleGetByID)

	// Webhooks (public)
	api.Post("/webhooks/elevenlabs", webhookHandler.HandleElevenLabsWebhook)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "OK",
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
