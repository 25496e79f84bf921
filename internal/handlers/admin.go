package handlers

import (
	"creda/internal/services/cards"
	"creda/internal/services/wallet"
	"creda/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the administrative card and wallet endpoints.
type AdminHandler struct {
	cardService   cards.Service
	walletService wallet.Service
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(cardService cards.Service, walletService wallet.Service) *AdminHandler {
	return &AdminHandler{
		cardService:   cardService,
		walletService: walletService,
	}
}

// GenerateCards creates a batch of redeemable cards.
func (h *AdminHandler) GenerateCards(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CreditAmount  int64  `json:"credit_amount"`
		Quantity      int    `json:"quantity"`
		ExpiresInDays int    `json:"expires_in_days"`
		BatchName     string `json:"batch_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	batch, err := h.cardService.GenerateBatch(c.Context(), cards.GenerateBatchRequest{
		CreditAmount:  input.CreditAmount,
		Quantity:      input.Quantity,
		ExpiresInDays: input.ExpiresInDays,
		BatchName:     input.BatchName,
		CreatedBy:     claims.AccountID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"cards": batch,
	})
}

// ListCards returns cards filtered by batch name and/or status.
func (h *AdminHandler) ListCards(c *fiber.Ctx) error {
	p := utils.GetPagination(c, 1, wallet.DefaultPageSize)

	batch := c.Query("batch")
	status := c.Query("status")

	list, total, err := h.cardService.List(c.Context(), batch, status, p.Limit, (p.Page-1)*p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	p.SetTotal(total)

	return utils.Success(c, fiber.Map{
		"cards":      list,
		"pagination": p,
	})
}

// AdjustWallet applies a signed administrative balance correction to any
// account.
func (h *AdminHandler) AdjustWallet(c *fiber.Ctx) error {
	var input struct {
		AccountID   string `json:"account_id"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.AccountID == "" {
		return utils.BadRequest(c, "account_id is required")
	}

	result, err := h.walletService.AdminAdjust(c.Context(), input.AccountID, input.Amount, input.Description)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"transaction_id": result.TransactionID,
		"new_balance":    result.NewBalance,
	})
}
