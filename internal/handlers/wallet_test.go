package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "creda/internal/errors"
	"creda/internal/middleware"
	"creda/internal/models"
	"creda/internal/services/cards"
	"creda/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GetWallet(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockWalletService) ListTransactions(ctx context.Context, accountID string, page, pageSize int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, accountID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *mockWalletService) RedeemCard(ctx context.Context, accountID, code string) (*wallet.RedeemResult, error) {
	args := m.Called(ctx, accountID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.RedeemResult), args.Error(1)
}

func (m *mockWalletService) Spend(ctx context.Context, accountID string, amount int64, relatedEntityID, description string) (*wallet.SpendResult, error) {
	args := m.Called(ctx, accountID, amount, relatedEntityID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.SpendResult), args.Error(1)
}

func (m *mockWalletService) Refund(ctx context.Context, accountID, transactionID string) (*wallet.RefundResult, error) {
	args := m.Called(ctx, accountID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.RefundResult), args.Error(1)
}

func (m *mockWalletService) AdminAdjust(ctx context.Context, accountID string, amount int64, description string) (*wallet.AdjustResult, error) {
	args := m.Called(ctx, accountID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.AdjustResult), args.Error(1)
}

type mockCardService struct {
	mock.Mock
}

func (m *mockCardService) GenerateBatch(ctx context.Context, req cards.GenerateBatchRequest) ([]models.RedeemableCard, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RedeemableCard), args.Error(1)
}

func (m *mockCardService) Lookup(ctx context.Context, code string) (*models.RedeemableCard, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedeemableCard), args.Error(1)
}

func (m *mockCardService) List(ctx context.Context, batchName, status string, limit, offset int) ([]models.RedeemableCard, int64, error) {
	args := m.Called(ctx, batchName, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.RedeemableCard), args.Get(1).(int64), args.Error(2)
}

func newTestApp(walletSvc wallet.Service, cardSvc cards.Service) *fiber.App {
	app := fiber.New()

	walletHandler := NewWalletHandler(walletSvc)
	adminHandler := NewAdminHandler(cardSvc, walletSvc)

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

	return app
}

func signToken(t *testing.T, accountID, role string) string {
	t.Helper()
	claims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AccountID: accountID,
		Role:      role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("dev-secret"))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// errorKind digs the machine-readable kind out of the error envelope.
func errorKind(body map[string]interface{}) string {
	wrapped, ok := body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	kind, _ := wrapped["kind"].(string)
	return kind
}

func TestGetWallet(t *testing.T) {
	walletSvc := new(mockWalletService)
	walletSvc.On("GetWallet", mock.Anything, "acct-1").Return(&models.Account{
		ID:          "acct-1",
		Balance:     700,
		TotalEarned: 1000,
		TotalSpent:  300,
	}, nil)
	walletSvc.On("ListTransactions", mock.Anything, "acct-1", 1, wallet.DefaultPageSize).
		Return([]models.Transaction{{ID: "txn-1", AccountID: "acct-1"}}, int64(1), nil)

	app := newTestApp(walletSvc, new(mockCardService))
	resp, body := doRequest(t, app, http.MethodGet, "/api/wallet/", signToken(t, "acct-1", models.RoleUser), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(700), body["balance"])
	assert.Equal(t, float64(1000), body["total_earned"])
	assert.Equal(t, float64(300), body["total_spent"])
	assert.Len(t, body["transactions"], 1)
	walletSvc.AssertExpectations(t)
}

func TestWalletRequiresAuth(t *testing.T) {
	app := newTestApp(new(mockWalletService), new(mockCardService))

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
		{name: "empty account id", token: signToken(t, "", models.RoleUser)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, app, http.MethodGet, "/api/wallet/", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRedeemCard(t *testing.T) {
	walletSvc := new(mockWalletService)
	walletSvc.On("RedeemCard", mock.Anything, "acct-1", "ABCD-EFGH-JKLM").Return(&wallet.RedeemResult{
		Code:          "ABCD-EFGH-JKLM",
		CreditAmount:  500,
		NewBalance:    500,
		TransactionID: "txn-1",
	}, nil)

	app := newTestApp(walletSvc, new(mockCardService))
	resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/redeem",
		signToken(t, "acct-1", models.RoleUser), fiber.Map{"code": "ABCD-EFGH-JKLM"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(500), body["new_balance"])
	assert.Equal(t, float64(500), body["credit_amount"])
}

func TestRedeemCardErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "unknown code", err: errs.ErrInvalidCode, wantStatus: http.StatusNotFound, wantKind: "INVALID_CODE"},
		{name: "already used", err: errs.ErrCardAlreadyUsed, wantStatus: http.StatusConflict, wantKind: "ALREADY_USED"},
		{name: "expired", err: errs.ErrCardExpired, wantStatus: http.StatusGone, wantKind: "EXPIRED"},
		{name: "account busy", err: errs.ErrAccountBusy, wantStatus: http.StatusConflict, wantKind: "ACCOUNT_BUSY"},
		{name: "storage down", err: errs.ErrStorageUnavailable, wantStatus: http.StatusServiceUnavailable, wantKind: "STORAGE_UNAVAILABLE"},
		{name: "redemption failed", err: errs.ErrRedemptionFailed, wantStatus: http.StatusServiceUnavailable, wantKind: "REDEMPTION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			walletSvc := new(mockWalletService)
			walletSvc.On("RedeemCard", mock.Anything, "acct-1", "SOME-CODE-HERE").Return(nil, tt.err)

			app := newTestApp(walletSvc, new(mockCardService))
			resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/redeem",
				signToken(t, "acct-1", models.RoleUser), fiber.Map{"code": "SOME-CODE-HERE"})

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantKind, errorKind(body))
		})
	}
}

func TestRedeemCardRateLimitedSetsRetryAfter(t *testing.T) {
	walletSvc := new(mockWalletService)
	walletSvc.On("RedeemCard", mock.Anything, "acct-1", "SOME-CODE-HERE").
		Return(nil, errs.ErrRateLimited.WithRetryAfter(17))

	app := newTestApp(walletSvc, new(mockCardService))
	resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/redeem",
		signToken(t, "acct-1", models.RoleUser), fiber.Map{"code": "SOME-CODE-HERE"})

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorKind(body))
	assert.Equal(t, "17", resp.Header.Get("Retry-After"))
}

func TestRedeemCardRequiresCode(t *testing.T) {
	app := newTestApp(new(mockWalletService), new(mockCardService))
	resp, _ := doRequest(t, app, http.MethodPost, "/api/wallet/redeem",
		signToken(t, "acct-1", models.RoleUser), fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSpend(t *testing.T) {
	walletSvc := new(mockWalletService)
	walletSvc.On("Spend", mock.Anything, "acct-1", int64(300), "order-9", "lunch").
		Return(&wallet.SpendResult{TransactionID: "txn-2", NewBalance: 200}, nil)

	app := newTestApp(walletSvc, new(mockCardService))
	resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/spend",
		signToken(t, "acct-1", models.RoleUser),
		fiber.Map{"amount": 300, "related_entity_id": "order-9", "description": "lunch"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "txn-2", body["transaction_id"])
	assert.Equal(t, float64(200), body["new_balance"])
}

func TestSpendRejections(t *testing.T) {
	t.Run("non-positive amount", func(t *testing.T) {
		app := newTestApp(new(mockWalletService), new(mockCardService))
		resp, _ := doRequest(t, app, http.MethodPost, "/api/wallet/spend",
			signToken(t, "acct-1", models.RoleUser), fiber.Map{"amount": 0})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		walletSvc := new(mockWalletService)
		walletSvc.On("Spend", mock.Anything, "acct-1", int64(900), "", "").
			Return(nil, errs.ErrInsufficientBalance)

		app := newTestApp(walletSvc, new(mockCardService))
		resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/spend",
			signToken(t, "acct-1", models.RoleUser), fiber.Map{"amount": 900})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "INSUFFICIENT_BALANCE", errorKind(body))
	})
}

func TestRefund(t *testing.T) {
	walletSvc := new(mockWalletService)
	walletSvc.On("Refund", mock.Anything, "acct-1", "txn-2").
		Return(&wallet.RefundResult{TransactionID: "txn-3", NewBalance: 500}, nil)

	app := newTestApp(walletSvc, new(mockCardService))
	resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/refund",
		signToken(t, "acct-1", models.RoleUser), fiber.Map{"transaction_id": "txn-2"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(500), body["new_balance"])
}

func TestRefundRejections(t *testing.T) {
	t.Run("missing transaction id", func(t *testing.T) {
		app := newTestApp(new(mockWalletService), new(mockCardService))
		resp, _ := doRequest(t, app, http.MethodPost, "/api/wallet/refund",
			signToken(t, "acct-1", models.RoleUser), fiber.Map{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("already refunded", func(t *testing.T) {
		walletSvc := new(mockWalletService)
		walletSvc.On("Refund", mock.Anything, "acct-1", "txn-2").
			Return(nil, errs.ErrInvalidOperation)

		app := newTestApp(walletSvc, new(mockCardService))
		resp, body := doRequest(t, app, http.MethodPost, "/api/wallet/refund",
			signToken(t, "acct-1", models.RoleUser), fiber.Map{"transaction_id": "txn-2"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OPERATION", errorKind(body))
	})
}
