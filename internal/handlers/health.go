package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Health reports service and database liveness.
func Health(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "unavailable"
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": dbStatus,
		})
	}
}
