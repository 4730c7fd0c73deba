package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/closeday-api/internal/application/service"
	"github.com/sangkips/closeday-api/internal/config"
	"github.com/sangkips/closeday-api/internal/infrastructure/database"
	"github.com/sangkips/closeday-api/internal/infrastructure/repository"
	"github.com/sangkips/closeday-api/internal/presentation/http/handler"
	"github.com/sangkips/closeday-api/internal/presentation/http/routes"
	"github.com/sangkips/closeday-api/pkg/posvendor"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	reportRepo := repository.NewDailyReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize vendor POS API client
	posClient := posvendor.NewClient(posvendor.Config{
		BaseURL: cfg.POS.BaseURL,
		Token:   cfg.POS.AccessToken,
	}, &http.Client{Timeout: time.Duration(cfg.POS.TimeoutSeconds) * time.Second})

	// Resolve the business timezone; a bad value falls back to the
	// reconciliation service's built-in default.
	location, err := time.LoadLocation(cfg.Business.Timezone)
	if err != nil {
		log.Printf("Warning: invalid BUSINESS_TIMEZONE %q, using default: %v", cfg.Business.Timezone, err)
		location = nil
	}

	// Initialize services
	reconService := service.NewReconciliationService(posClient, location, cfg.POS.MoneyDivisor)
	reportService := service.NewReportService(reportRepo, reconService, cfg.Business.SafeBoxNoteValue)

	// Initialize handlers
	handlers := &routes.Handlers{
		Report: handler.NewReportHandler(reportService),
		Sales:  handler.NewSalesHandler(reconService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
