package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/database"
	"github.com/grovellows/tender-backend/handlers"
	"github.com/grovellows/tender-backend/jobs"
	"github.com/grovellows/tender-backend/services"
	"github.com/grovellows/tender-backend/shared"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate("database/schema.sql"); err != nil {
		log.Printf("Migration warning: %v", err)
	}
	if err := database.ValidateSchema(context.Background()); err != nil {
		log.Fatalf("Schema validation failed: %v", err)
	}

	// Shared scraping infrastructure
	scraperConfig := *config.DefaultScraperConfig()
	clientFactory := shared.NewHTTPClientFactory(scraperConfig.RequestTimeout)
	defer clientFactory.CleanupAllClients()
	rateLimiter := shared.NewHTTPRequestRateLimiter(scraperConfig.PortalDelay)
	extractionMetrics := shared.NewExtractionMetrics()

	// Pipeline services
	extractor := services.NewTextExtractor(extractionMetrics)
	classifier := services.NewTenderClassifier()
	tenderService := services.NewTenderService(database.DB)
	ingestionService := services.NewIngestionService(tenderService, extractor, classifier, scraperConfig)
	adapters := services.BuildDefaultAdapters(clientFactory, rateLimiter, extractionMetrics, scraperConfig)

	developerScraper := services.NewDeveloperScraper(extractor, rateLimiter, scraperConfig)
	projectService := services.NewDeveloperProjectService(database.DB)

	maxPerSource := cfg.GetMaxPerSource()

	logrus.Infof("Tender backend services initialized:")
	logrus.Infof("  - %d source adapters (rate limit: %v, timeout: %v)",
		len(adapters), scraperConfig.PortalDelay, scraperConfig.RequestTimeout)
	logrus.Infof("  - Classification with %d service categories", 18)
	logrus.Infof("  - Per-source cap: %d listings", maxPerSource)

	// Initialize Jobs
	refreshJob := jobs.NewTenderRefreshJob(ingestionService, adapters, maxPerSource)
	projectsJob := jobs.NewDeveloperProjectsUpdateJob(projectService, developerScraper)

	// Initialize handlers
	tenderHandler := handlers.NewTenderHandler(tenderService)
	scrapeHandler := handlers.NewScrapeHandler(ingestionService, adapters, maxPerSource)
	projectHandler := handlers.NewProjectHandler(projectService, developerScraper)
	adminHandler := handlers.NewAdminHandler(tenderService, ingestionService, extractionMetrics, rateLimiter, cfg.AdminToken)

	// Start Background Jobs
	go func() {
		// Run immediately on startup
		go refreshJob.Run()

		refreshTicker := time.NewTicker(cfg.GetScrapeInterval())
		projectsTicker := time.NewTicker(12 * time.Hour)

		for {
			select {
			case <-refreshTicker.C:
				refreshJob.Run()
			case <-projectsTicker.C:
				projectsJob.Run()
			}
		}
	}()

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", adminHandler.GetHealth)

	// Routes
	api := app.Group("/api/v1")

	// Tender Routes
	api.Get("/tenders", tenderHandler.GetTenders)
	api.Get("/tenders/:id", tenderHandler.GetTenderByID)
	api.Post("/tenders/:id/apply", tenderHandler.ApplyToTender)
	api.Post("/tenders/:id/unapply", tenderHandler.WithdrawFromTender)
	api.Put("/tenders/:id/status", tenderHandler.UpdateStatus)

	// Scrape Routes
	api.Post("/scrape/all", scrapeHandler.ScrapeAll)
	api.Post("/scrape/comprehensive", scrapeHandler.ScrapeComprehensive)
	api.Get("/scrape/sources", scrapeHandler.GetSources)

	// Developer Project Routes
	api.Get("/projects", projectHandler.GetProjects)
	api.Post("/projects/refresh", projectHandler.RefreshProjects)

	// Admin Routes
	admin := api.Group("/admin", adminHandler.RequireToken)
	admin.Get("/stats", adminHandler.GetStats)
	admin.Get("/metrics", adminHandler.GetMetrics)
	admin.Post("/metrics/reset", adminHandler.ResetMetrics)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
