package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/tjsjts22/jpoproject/internal/airquality"
	httpapi "github.com/tjsjts22/jpoproject/internal/api/http"
	"github.com/tjsjts22/jpoproject/internal/catalog"
	"github.com/tjsjts22/jpoproject/internal/config"
	"github.com/tjsjts22/jpoproject/internal/gios"
	"github.com/tjsjts22/jpoproject/internal/logging"
	"github.com/tjsjts22/jpoproject/internal/scheduler"
	"github.com/tjsjts22/jpoproject/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := logging.New(cfg.AppEnv, cfg.LogLevel)

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// File-backed document store for station data and the catalog.
	docStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}

	// Upstream client with resilience (backoff + circuit breaker).
	client := gios.NewClient(httpClient, cfg.GiosBaseURL)

	cat := catalog.New(docStore, client, slogger)
	service := airquality.NewService(docStore, client, slogger)

	// Build the station catalog on first run.
	bootstrapCatalog(cat, slogger)

	// Scheduler that periodically refreshes tracked stations.
	sched := scheduler.New(cfg.TrackedStations, cfg.RefreshInterval, service, slogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "airmon",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "airmon",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cat)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}

// bootstrapCatalog rebuilds the station catalog when none is persisted
// yet. A failed rebuild is logged, not fatal; searches will 404 until a
// manual refresh succeeds.
func bootstrapCatalog(cat *catalog.Catalog, slogger *slog.Logger) {
	if _, err := cat.Stations(); err == nil {
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		slogger.Warn("station catalog unreadable", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	count, err := cat.Refresh(ctx)
	if err != nil {
		slogger.Warn("initial station catalog build failed", "error", err)
		return
	}
	slogger.Info("station catalog initialized", "stations", count)
}
