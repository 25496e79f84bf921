// Package main is an operator CLI that generates a batch of redeemable
// cards and prints the codes, for offline distribution.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"creda/internal/config"
	"creda/internal/repositories"
	"creda/internal/services/cards"

	"go.uber.org/zap"
)

func main() {
	amount := flag.Int64("amount", 0, "credit amount per card (required)")
	quantity := flag.Int("quantity", 10, "number of cards to generate")
	days := flag.Int("days", cards.DefaultExpiryDays, "days until expiry")
	batch := flag.String("batch", "", "batch name")
	flag.Parse()

	if *amount <= 0 {
		fmt.Fprintln(os.Stderr, "usage: cardgen -amount N [-quantity N] [-days N] [-batch NAME]")
		os.Exit(2)
	}

	config.LoadEnv()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zapLogger)

	if err := repositories.InitDB(); err != nil {
		zapLogger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer repositories.CloseDB()

	cardService := cards.NewService(repositories.NewCardRepository(repositories.DB))

	generated, err := cardService.GenerateBatch(context.Background(), cards.GenerateBatchRequest{
		CreditAmount:  *amount,
		Quantity:      *quantity,
		ExpiresInDays: *days,
		BatchName:     *batch,
		CreatedBy:     "cardgen",
	})
	if err != nil {
		zapLogger.Fatal("batch generation failed", zap.Error(err))
	}

	for _, card := range generated {
		fmt.Printf("%s\t%d\t%s\n", card.Code, card.CreditAmount, card.ExpiresAt.Format("2006-01-02"))
	}
	zapLogger.Info("batch generated",
		zap.Int("quantity", len(generated)),
		zap.String("batch", *batch),
	)
}
