package handlers

import (
	"errors"
	"strconv"

	errs "creda/internal/errors"
	"creda/internal/utils"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[string]int{
	"INVALID_CODE":               fiber.StatusNotFound,
	"NOT_FOUND":                  fiber.StatusNotFound,
	"ALREADY_USED":               fiber.StatusConflict,
	"EXPIRED":                    fiber.StatusGone,
	"INSUFFICIENT_BALANCE":       fiber.StatusUnprocessableEntity,
	"INVALID_AMOUNT":             fiber.StatusBadRequest,
	"INVALID_OPERATION":          fiber.StatusBadRequest,
	"INVALID_BATCH_SIZE":         fiber.StatusBadRequest,
	"INVALID_EXPIRY":             fiber.StatusBadRequest,
	"ACCOUNT_BUSY":               fiber.StatusConflict,
	"RATE_LIMITED":               fiber.StatusTooManyRequests,
	"CONCURRENT_UPDATE_CONFLICT": fiber.StatusConflict,
	"STORAGE_UNAVAILABLE":        fiber.StatusServiceUnavailable,
	"REDEMPTION_FAILED":          fiber.StatusServiceUnavailable,
}

// respondError translates a service error into the wire shape
// {"error": {"kind", "message"}}. Unknown errors map to a generic 500 so
// internal error text never leaks.
func respondError(c *fiber.Ctx, err error) error {
	var de *errs.DomainError
	if !errors.As(err, &de) {
		return utils.InternalError(c, "internal error")
	}

	status, ok := kindStatus[de.Code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if de.RetryAfterSeconds > 0 {
		c.Set("Retry-After", strconv.Itoa(de.RetryAfterSeconds))
	}
	return c.Status(status).JSON(fiber.Map{"error": de})
}
