package main

import (
	"os"

	"github.com/AVMG20/hostgoblin/config"
	"github.com/AVMG20/hostgoblin/db"
	"github.com/AVMG20/hostgoblin/imagestore"
	"github.com/AVMG20/hostgoblin/revalidate"
	"github.com/AVMG20/hostgoblin/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize database
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	store := imagestore.New(db.DB, cfg.StorageRoot, log)
	hub := revalidate.NewHub(log)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app, store, hub, log)

	// Start server
	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
