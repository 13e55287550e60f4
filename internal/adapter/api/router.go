package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppInfo struct {
	Name    string
	Version string
	Env     string
}

func NewApp(info AppInfo) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      info.Name,
		ErrorHandler: ErrorHandler,
	})
}

func SetupRouter(app *fiber.App, handler *ChatHandler, info AppInfo) {
	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": info.Version,
			"env":     info.Env,
		})
	})

	app.Post("/chat", handler.HandleChat)

	// API Versioning
	v1 := app.Group("/v1")
	v1.Post("/chat", handler.HandleChat)
	v1.Get("/sessions/:session_id/history", handler.HandleHistory)
}
