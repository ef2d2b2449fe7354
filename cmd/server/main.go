package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/clearhaven/homestock/internal/config"
	"github.com/clearhaven/homestock/internal/database"
	"github.com/clearhaven/homestock/internal/handlers"
	"github.com/clearhaven/homestock/internal/middleware"
	"github.com/clearhaven/homestock/internal/reconcile"
	"github.com/clearhaven/homestock/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create admin user if it doesn't exist
	if err := database.EnsureAdminUser(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure admin user: %v", err)
	}

	// Initialize photo storage if configured
	var storage *services.StorageService
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		storage, err = services.NewStorageService(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
		if err != nil {
			log.Printf("Warning: Failed to initialize storage service: %v", err)
			storage = nil
		} else if err := storage.EnsureBucket(context.Background()); err != nil {
			log.Printf("Warning: Failed to ensure S3 bucket exists: %v", err)
		}
	} else {
		log.Println("S3 credentials not configured, item photos disabled")
	}

	// Reconciliation engine and scheduler
	engine := reconcile.NewEngine(db)

	var notifier reconcile.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.NotifyWebhookURL)
	} else {
		log.Println("NOTIFY_WEBHOOK_URL not set, alerts go to the server log")
		notifier = services.LogNotifier{}
	}

	scheduler := reconcile.NewScheduler(engine, db, db, notifier, reconcile.SchedulerConfig{
		CheckInterval:      cfg.CheckInterval,
		RegenerateInterval: cfg.RegenerateInterval,
		RenotifyInterval:   cfg.RenotifyInterval,
	})
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Create handler with dependencies
	h := handlers.New(db, cfg, engine, storage)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetCurrentUser)
	auth.Post("/refresh", middleware.AuthRequired(cfg), h.RefreshToken)

	// Category routes (authenticated)
	categories := api.Group("/categories", middleware.AuthRequired(cfg))
	categories.Get("/", h.ListCategories)
	categories.Post("/", h.CreateCategory)
	categories.Put("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)
	categories.Get("/:id/items", h.ListCategoryItems)
	categories.Post("/:id/items", h.CreateItem)

	// Inventory routes (authenticated)
	api.Get("/inventory/summary", middleware.AuthRequired(cfg), h.GetInventorySummary)

	items := api.Group("/items", middleware.AuthRequired(cfg))
	items.Get("/:id", h.GetItem)
	items.Put("/:id", h.UpdateItem)
	items.Delete("/:id", h.DeleteItem)
	items.Post("/:id/photo", h.UploadItemPhoto)
	items.Get("/:id/photo", h.GetItemPhoto)
	items.Delete("/:id/photo", h.DeleteItemPhoto)

	// Shopping list routes (authenticated)
	lists := api.Group("/lists", middleware.AuthRequired(cfg))
	lists.Get("/", h.ListShoppingLists)
	lists.Post("/", h.CreateShoppingList)
	lists.Get("/:id", h.GetShoppingList)
	lists.Put("/:id", h.UpdateShoppingList)
	lists.Delete("/:id", h.DeleteShoppingList)
	lists.Post("/:id/items", h.AddListItems)
	lists.Delete("/:id/items/:itemId", h.RemoveListItem)
	lists.Post("/:id/complete", h.CompleteShoppingList)

	// Manual reconciliation trigger (authenticated)
	api.Post("/reconcile/run", middleware.AuthRequired(cfg), h.RunReconciliation)

	// Shut down cleanly on SIGINT/SIGTERM so in-flight passes stop
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
