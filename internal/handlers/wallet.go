// Package handlers implements the HTTP endpoints of the wallet API.
package handlers

import (
	"creda/internal/models"
	"creda/internal/services/wallet"
	"creda/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler serves the user-facing wallet endpoints.
type WalletHandler struct {
	walletService wallet.Service
}

// NewWalletHandler creates a wallet handler.
func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// extractUserClaims is a helper to read the authenticated claims.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// GetWallet returns the account snapshot plus the first page of history.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	account, err := h.walletService.GetWallet(c.Context(), claims.AccountID)
	if err != nil {
		return respondError(c, err)
	}

	p := utils.GetPagination(c, 1, wallet.DefaultPageSize)
	txns, total, err := h.walletService.ListTransactions(c.Context(), claims.AccountID, p.Page, p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	p.SetTotal(total)

	return utils.Success(c, fiber.Map{
		"balance":      account.Balance,
		"total_earned": account.TotalEarned,
		"total_spent":  account.TotalSpent,
		"transactions": txns,
		"pagination":   p,
	})
}

// ListTransactions returns one page of the account's ledger history.
func (h *WalletHandler) ListTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, 1, wallet.DefaultPageSize)
	txns, total, err := h.walletService.ListTransactions(c.Context(), claims.AccountID, p.Page, p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	p.SetTotal(total)

	return utils.Success(c, fiber.Map{
		"transactions": txns,
		"pagination":   p,
	})
}

// RedeemCard converts a prepaid code into wallet credits.
func (h *WalletHandler) RedeemCard(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Code == "" {
		return utils.BadRequest(c, "code is required")
	}

	result, err := h.walletService.RedeemCard(c.Context(), claims.AccountID, input.Code)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"new_balance":   result.NewBalance,
		"credit_amount": result.CreditAmount,
	})
}

// Spend debits the wallet for a purchase.
func (h *WalletHandler) Spend(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount          int64  `json:"amount"`
		RelatedEntityID string `json:"related_entity_id"`
		Description     string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Amount <= 0 {
		return utils.BadRequest(c, "amount must be greater than 0")
	}

	result, err := h.walletService.Spend(c.Context(), claims.AccountID, input.Amount, input.RelatedEntityID, input.Description)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"transaction_id": result.TransactionID,
		"new_balance":    result.NewBalance,
	})
}

// Refund reverses a prior spend.
func (h *WalletHandler) Refund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.TransactionID == "" {
		return utils.BadRequest(c, "transaction_id is required")
	}

	result, err := h.walletService.Refund(c.Context(), claims.AccountID, input.TransactionID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"new_balance": result.NewBalance,
	})
}
