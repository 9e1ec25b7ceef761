// Package main is the entry point for the codecomposer API server
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/james-see/codecomposer/pkg/api"
	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/config"
	"github.com/james-see/codecomposer/pkg/style"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	enabled, err := api.InitSentry(cfg, releaseVersion)
	switch {
	case err != nil:
		log.Printf("Failed to initialize Sentry: %v", err)
	case enabled:
		log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
		defer api.Flush()
	default:
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	reg := style.Default()
	if cfg.StylesFile != "" {
		if reg, err = style.WithOverrides(cfg.StylesFile); err != nil {
			log.Fatal("Failed to load styles:", err)
		}
	}
	opts := []api.Option{
		api.WithComposer(composer.New(composer.WithStyles(reg), composer.WithLogger(logger))),
		api.WithLogger(logger),
	}
	if enabled {
		opts = append(opts, api.WithSentry())
	}

	if cfg.DatabasePath != "" {
		store, err := archive.Open(cfg.DatabasePath)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to open history database:", err)
		}
		defer store.Close()
		opts = append(opts, api.WithHistory(store))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Printf("Starting codecomposer API server on port %s", cfg.Port)
	log.Printf("Swagger docs available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := api.NewServer(opts...).Run(cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Server error:", err)
	}
}
