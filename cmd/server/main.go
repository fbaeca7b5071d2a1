package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/safemeet/internal/apperrors"
	"github.com/example/safemeet/internal/config"
	"github.com/example/safemeet/internal/database"
	"github.com/example/safemeet/internal/routes"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "SafeMeet API",
		ErrorHandler: apperrors.ErrorHandler,
		BodyLimit:    12 << 20,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app, db, cfg)

	log.Printf("[Server] listening on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
