package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/credentials"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/scheduler"
	"github.com/jpay/wallet/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	destiny = "08012345678"
	sarah   = "3030303030"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	clk := clock.NewFixed(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store := ledger.NewStore(clk)
	hasher := credentials.NewHasher(credentials.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
	otp := credentials.NewOTPService(nil, clk, 6, 5*time.Minute)

	catalog := services.NewCatalogService()
	auth := services.NewAuthService(store, hasher, otp, nil, nil, nil, clk, services.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	require.NoError(t, auth.SeedDemoUsers())

	transfers := services.NewTransferService(store, nil, nil, nil, nil, clk)
	resolver := services.NewAccountService(store, catalog, nil, time.Second)
	recurring := services.NewRecurringService(store, scheduler.New(clk), nil)
	savings := services.NewSavingsService(store, transfers)
	payments := services.NewPaymentService(catalog, resolver, auth, transfers, recurring, nil, clk, 200)

	return NewRouter(RouterConfig{
		Auth:      NewAuthHandler(auth),
		Wallet:    NewWalletHandler(auth, transfers, savings, recurring, resolver, catalog),
		Payments:  NewPaymentHandler(payments),
		QR:        NewQRHandler(services.NewQRService(store, nil, clk)),
		JWTSecret: "test-secret",
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func login(t *testing.T, h http.Handler, phone string) string {
	t.Helper()
	w, body := do(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Phone: phone, Password: "password"})
	require.Equal(t, http.StatusOK, w.Code)
	return body["token"].(string)
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)
	w, body := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAuthHandler_SignUpAndLogin(t *testing.T) {
	h := newTestRouter(t)

	t.Run("signup", func(t *testing.T) {
		w, body := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", models.SignUpRequest{Name: "Ada Obi", Phone: "08011112222", Password: "secret1"})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, body["accountCreated"])
		assert.Equal(t, true, body["codeIssued"])
	})

	t.Run("unverified login is forbidden", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Phone: "08011112222", Password: "secret1"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", models.SignUpRequest{Name: "Ada Obi", Phone: destiny, Password: "secret1"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		w, body := do(t, h, http.MethodPost, "/api/v1/auth/signup", "", models.SignUpRequest{Name: "A", Phone: "123", Password: "1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, body["details"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Phone: destiny, Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("account requires token", func(t *testing.T) {
		w, _ := do(t, h, http.MethodGet, "/api/v1/account", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("account with token", func(t *testing.T) {
		w, body := do(t, h, http.MethodGet, "/api/v1/account", login(t, h, destiny), nil)
		require.Equal(t, http.StatusOK, w.Code)
		account := body["account"].(map[string]any)
		assert.Equal(t, "2024202424", account["accountNumber"])
		assert.Equal(t, float64(5500000), account["balance"])
	})
}

func TestDecodeJSON_Rejections(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodPost, "/api/v1/auth/login", "", `{"phone":"08012345678","password":"password","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/auth/login", "", `{"phone":"08012345678","password":"password"}{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/auth/login", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_Transfer(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, destiny)

	w, body := do(t, h, http.MethodPost, "/api/v1/wallet/transfer", token, models.TransferRequest{AccountNumber: sarah, Amount: "5,000", Narration: "lunch"})
	require.Equal(t, http.StatusOK, w.Code)
	account := body["account"].(map[string]any)
	assert.Equal(t, float64(5000000), account["balance"])

	w, _ = do(t, h, http.MethodPost, "/api/v1/wallet/transfer", token, models.TransferRequest{AccountNumber: sarah, Amount: "1000000"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/wallet/transfer", token, models.TransferRequest{AccountNumber: "1111111111", Amount: "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodPost, "/api/v1/wallet/transfer", token, models.TransferRequest{AccountNumber: "2024202424", Amount: "10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, h, http.MethodGet, "/api/v1/wallet/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["transactions"], 1)
}

func TestWalletHandler_Resolve(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, destiny)

	w, body := do(t, h, http.MethodGet, "/api/v1/resolve/account?accountNumber="+sarah, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sarah Connor", body["name"])

	w, _ = do(t, h, http.MethodGet, "/api/v1/resolve/account?accountNumber=123", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, h, http.MethodGet, "/api/v1/resolve/meter?meterNumber=123&state=Lagos", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, true, body["retryable"])

	w, body = do(t, h, http.MethodGet, "/api/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["catalog"])
}

func TestPaymentHandler_Flow(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, destiny)

	w, body := do(t, h, http.MethodPost, "/api/v1/payments", token, map[string]any{"service": "airtime"})
	require.Equal(t, http.StatusCreated, w.Code)
	flowID := body["flow"].(map[string]any)["id"].(string)
	base := "/api/v1/payments/" + flowID

	w, body = do(t, h, http.MethodPost, base+"/submit", token, map[string]any{"fields": map[string]string{"phoneNumber": "08031234567", "amount": "abc"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "form", body["flow"].(map[string]any)["state"])

	w, body = do(t, h, http.MethodPost, base+"/submit", token, map[string]any{"fields": map[string]string{"amount": "1000"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Airtime for 08031234567", body["flow"].(map[string]any)["description"])

	w, _ = do(t, h, http.MethodPost, base+"/proceed", token, map[string]any{"recurring": false})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = do(t, h, http.MethodPost, base+"/confirm", token, map[string]any{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "confirm_password", body["flow"].(map[string]any)["state"])

	w, body = do(t, h, http.MethodPost, base+"/confirm", token, map[string]any{"password": "password"})
	require.Equal(t, http.StatusOK, w.Code)
	flow := body["flow"].(map[string]any)
	assert.Equal(t, "committed", flow["state"])
	assert.Equal(t, float64(5500000-100000), flow["account"].(map[string]any)["balance"])

	w, _ = do(t, h, http.MethodPost, base+"/confirm", token, map[string]any{"password": "password"})
	assert.Equal(t, http.StatusConflict, w.Code)

	other := login(t, h, "08087654321")
	w, _ = do(t, h, http.MethodGet, base, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQRHandler(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h, "08087654321")

	w, body := do(t, h, http.MethodPost, "/api/v1/qr/generate", token, map[string]any{"amount": "2500"})
	require.Equal(t, http.StatusOK, w.Code)
	code := body["qrCode"].(string)
	assert.NotEmpty(t, body["qrImage"])

	payer := login(t, h, destiny)
	w, body = do(t, h, http.MethodPost, "/api/v1/qr/process", payer, map[string]any{"qrData": code})
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, sarah, data["accountNumber"])
	assert.Equal(t, float64(250000), data["amount"])

	w, _ = do(t, h, http.MethodPost, "/api/v1/qr/process", payer, map[string]any{"qrData": code})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
