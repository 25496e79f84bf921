// Package routes wires repositories, services, and handlers onto the
// Fiber application.
package routes

import (
	"time"

	"creda/internal/config"
	"creda/internal/handlers"
	"creda/internal/middleware"
	"creda/internal/repositories"
	"creda/internal/repositories/cache"
	"creda/internal/services/cards"
	"creda/internal/services/guard"
	"creda/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes builds the dependency graph and registers all endpoints.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.CacheService) {
	ledgerRepo := repositories.NewLedgerRepository(db)
	cardRepo := repositories.NewCardRepository(db)
	txManager := repositories.NewTxManager(db)

	locker := guard.NewAccountLocker(config.GetDurationEnv("LOCK_WAIT_TIMEOUT", guard.DefaultLockWait))
	limiter := guard.NewRedisRateLimiter(
		cacheSvc.Client(),
		"creda:ratelimit",
		config.GetIntEnv("REDEEM_RATE_LIMIT", 5),
		config.GetDurationEnv("REDEEM_RATE_WINDOW", time.Minute),
	)

	walletService := wallet.NewService(ledgerRepo, cardRepo, txManager, cacheSvc, locker, limiter)
	cardService := cards.NewService(cardRepo)

	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(cardService, walletService)
	healthHandler := handlers.NewHealthHandler(db, cacheSvc)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api", middleware.Auth())

	walletGroup := api.Group("/wallet")
	walletGroup.Get("/", walletHandler.GetWallet)
	walletGroup.Get("/transactions", walletHandler.ListTransactions)
	walletGroup.Post("/redeem", walletHandler.RedeemCard)
	walletGroup.Post("/spend", walletHandler.Spend)
	walletGroup.Post("/refund", walletHandler.Refund)

	admin := api.Group("/admin", middleware.AdminOnly)
	admin.Post("/cards/generate", adminHandler.GenerateCards)
	admin.Get("/cards", adminHandler.ListCards)
	admin.Post("/wallet/adjust", adminHandler.AdjustWallet)
}
