package services

import (
	"context"
	"testing"
	"time"

	"github.com/jpay/wallet/internal/audit"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/credentials"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/scheduler"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

const testPassword = "password"

// cheap argon2 parameters keep the suite fast
var testHashParams = credentials.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	return m.Called(routingKey, body).Error(0)
}

func (m *MockPublisher) Close() {}

type fixture struct {
	clock     *clock.Fixed
	store     *ledger.Store
	hasher    *credentials.Hasher
	publisher *MockPublisher
	catalog   *CatalogService
	auth      *AuthService
	transfers *TransferService
	accounts  *AccountService
	recurring *RecurringService
	savings   *SavingsService
	payments  *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFixed(testNow)
	store := ledger.NewStore(clk)
	hasher := credentials.NewHasher(testHashParams)
	otp := credentials.NewOTPService(credentials.NewMemoryCodeStore(), clk, 6, 5*time.Minute)
	auditLogger := audit.NewAuditLogger(clk).WithSink(func(string) {})

	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	catalog := NewCatalogService()
	auth := NewAuthService(store, hasher, otp, pub, auditLogger, nil, clk, AuthConfig{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		OpeningBalance: models.MustNaira("12540.75"),
	})
	transfers := NewTransferService(store, nil, auditLogger, nil, pub, clk)
	accounts := NewAccountService(store, catalog, nil, time.Second)
	recurring := NewRecurringService(store, scheduler.New(clk), auditLogger)

	return &fixture{
		clock:     clk,
		store:     store,
		hasher:    hasher,
		publisher: pub,
		catalog:   catalog,
		auth:      auth,
		transfers: transfers,
		accounts:  accounts,
		recurring: recurring,
		savings:   NewSavingsService(store, transfers),
		payments:  NewPaymentService(catalog, accounts, auth, transfers, recurring, nil, clk, 200),
	}
}

// seed creates a verified account whose password is testPassword
func (f *fixture) seed(t *testing.T, name, phone, accountNumber, balance string) *models.Account {
	t.Helper()

	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)

	account, err := f.store.Create(&models.Account{
		ID:            "acct-" + accountNumber,
		Name:          name,
		Phone:         phone,
		PasswordHash:  hash,
		Verified:      true,
		Balance:       models.MustNaira(balance),
		AccountNumber: accountNumber,
	})
	require.NoError(t, err)
	return account
}

func (f *fixture) balance(t *testing.T, phone string) int64 {
	t.Helper()
	account, err := f.store.FindByPhone(phone)
	require.NoError(t, err)
	return account.Balance
}
