// Package main is the entry point for the wallet API server. It loads
// configuration, initializes PostgreSQL and Redis, wires the routes, and
// starts the HTTP listener.
package main

import (
	"time"

	"creda/internal/config"
	"creda/internal/repositories"
	"creda/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	zapLogger := newLogger()
	defer zapLogger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zapLogger)

	if err := repositories.InitDB(); err != nil {
		zapLogger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer repositories.CloseDB()

	app := fiber.New(fiber.Config{
		AppName: "creda",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Coarse per-IP throttle in front of redemption; the per-account
	// limiter inside the wallet service is the authoritative one.
	app.Use("/api/wallet/redeem", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("REDEEM_IP_RATE_LIMIT", 30),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, repositories.DB, repositories.Cache)

	addr := ":" + config.GetEnv("PORT", "3000")
	zapLogger.Info("starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	if config.IsProduction() {
		l, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}
