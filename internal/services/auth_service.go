package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jpay/wallet/internal/audit"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/credentials"
	"github.com/jpay/wallet/internal/events"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/metrics"
	"github.com/jpay/wallet/internal/models"
)

const (
	PurposeSignup        = "signup"
	PurposePasswordReset = "password_reset"

	accountNumberAttempts = 20
)

// AuthConfig carries the signing and signup settings of the auth service
type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	OpeningBalance int64 // kobo credited to every new account
}

type AuthService struct {
	store     *ledger.Store
	hasher    *credentials.Hasher
	otp       *credentials.OTPService
	publisher events.Publisher
	audit     *audit.AuditLogger
	metrics   *metrics.Metrics
	clock     clock.Clock
	cfg       AuthConfig
}

func NewAuthService(store *ledger.Store, hasher *credentials.Hasher, otp *credentials.OTPService, publisher events.Publisher, auditLogger *audit.AuditLogger, m *metrics.Metrics, clk clock.Clock, cfg AuthConfig) *AuthService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if publisher == nil {
		publisher = events.Fallback{}
	}
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger(clk)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		otp:       otp,
		publisher: publisher,
		audit:     auditLogger,
		metrics:   m,
		clock:     clk,
		cfg:       cfg,
	}
}

// SignUp registers an unverified account and issues its verification code.
func (s *AuthService) SignUp(ctx context.Context, name, phone, password string) (*models.SignUpResult, error) {
	log.Printf("[AUTH] Signup request for phone: %s", phone)

	if _, err := s.store.FindByPhone(phone); err == nil {
		log.Printf("[AUTH] Signup rejected, phone already registered: %s", phone)
		return nil, models.ErrDuplicatePhone
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for %s: %v", phone, err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	account := &models.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Phone:        phone,
		PasswordHash: hashedPassword,
		Balance:      s.cfg.OpeningBalance,
		Goals: []models.SavingsGoal{
			{ID: "goal-" + uuid.NewString(), Name: "New Phone", TargetAmount: models.MustNaira("450000")},
		},
		CreatedAt: now,
	}
	if s.cfg.OpeningBalance > 0 {
		welcome := newEntry(s.clock, "Welcome bonus", models.ServiceAddFunds, newReference(s.clock))
		welcome.Direction = models.DirectionCredit
		welcome.Amount = s.cfg.OpeningBalance
		account.Entries = []models.Entry{welcome}
	}

	created, err := s.createWithFreshNumber(account)
	if err != nil {
		log.Printf("[AUTH] Account creation failed for %s: %v", phone, err)
		return nil, err
	}
	s.audit.LogOperation(created.AccountNumber, "SIGNUP", "account created for "+phone)

	result := &models.SignUpResult{AccountCreated: true, AccountNumber: created.AccountNumber}

	code, err := s.issueCode(ctx, phone, PurposeSignup)
	if err != nil {
		return result, err
	}
	result.CodeIssued = true
	result.Code = code

	log.Printf("[AUTH] Signup successful for %s, account %s", phone, created.AccountNumber)
	return result, nil
}

func (s *AuthService) createWithFreshNumber(account *models.Account) (*models.Account, error) {
	for i := 0; i < accountNumberAttempts; i++ {
		account.AccountNumber = generateAccountNumber()
		if s.store.AccountNumberTaken(account.AccountNumber) {
			continue
		}
		created, err := s.store.Create(account)
		if errors.Is(err, ledger.ErrDuplicateAccountNumber) {
			continue
		}
		return created, err
	}
	return nil, fmt.Errorf("could not allocate an account number after %d attempts", accountNumberAttempts)
}

func (s *AuthService) issueCode(ctx context.Context, phone, purpose string) (string, error) {
	code, expiresAt, err := s.otp.Issue(ctx, phone)
	if err != nil {
		log.Printf("[AUTH] Code issue failed for %s: %v", phone, err)
		return "", err
	}
	s.metrics.ObserveOTP("issued")

	if err := s.publisher.Publish(ctx, events.RouteOTPIssued, events.OTPIssued{
		Phone:     phone,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	}); err != nil {
		log.Printf("[AUTH] Code delivery event for %s not published: %v", phone, err)
	}
	return code, nil
}

// VerifySignup consumes the signup code and marks the account verified.
func (s *AuthService) VerifySignup(ctx context.Context, phone, code string) (*models.Account, error) {
	if _, err := s.store.FindByPhone(phone); err != nil {
		return nil, models.ErrInvalidOrExpiredCode
	}

	if err := s.otp.Verify(ctx, phone, code); err != nil {
		s.metrics.ObserveOTP("rejected")
		return nil, err
	}
	s.metrics.ObserveOTP("verified")

	account, err := s.store.Mutate(phone, func(a *models.Account) error {
		a.Verified = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Account verified for %s", phone)
	s.audit.LogOperation(account.AccountNumber, "VERIFY", "phone verified")
	return account, nil
}

// Login checks the password of a verified account and issues a session token.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*models.AuthResponse, error) {
	log.Printf("[AUTH] Login request for phone number: %s", phone)

	account, err := s.verifiedAccount(phone)
	if err == nil && !s.hasher.Verify(password, account.PasswordHash) {
		log.Printf("[AUTH] Invalid password for user: %s", phone)
		err = models.ErrWrongPassword
	}
	s.metrics.ObserveLogin("password", err)
	if err != nil {
		s.audit.LogFailure(phone, "LOGIN", err)
		return nil, err
	}

	return s.session(account, "password")
}

// LoginWithBiometrics signs in a verified account that has opted into biometrics.
// The biometric check itself happens on the device.
func (s *AuthService) LoginWithBiometrics(ctx context.Context, phone string) (*models.AuthResponse, error) {
	account, err := s.verifiedAccount(phone)
	if err == nil && !account.BiometricsEnabled {
		err = models.ErrBiometricsDisabled
	}
	s.metrics.ObserveLogin("biometric", err)
	if err != nil {
		s.audit.LogFailure(phone, "LOGIN", err)
		return nil, err
	}

	return s.session(account, "biometric")
}

func (s *AuthService) verifiedAccount(phone string) (*models.Account, error) {
	account, err := s.store.FindByPhone(phone)
	if err != nil {
		log.Printf("[AUTH] User not found for phone number: %s", phone)
		return nil, err
	}
	if !account.Verified {
		log.Printf("[AUTH] Login attempt on unverified account: %s", phone)
		return nil, models.ErrNotVerifiedAccount
	}
	return account, nil
}

func (s *AuthService) session(account *models.Account, method string) (*models.AuthResponse, error) {
	token, err := s.generateJWT(account)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for %s: %v", account.Phone, err)
		return nil, fmt.Errorf("generate token: %w", err)
	}

	log.Printf("[AUTH] Login successful for %s (%s)", account.Phone, method)
	s.audit.LogOperation(account.AccountNumber, "LOGIN", method)
	return &models.AuthResponse{Token: token, Account: account}, nil
}

// RequestPasswordReset issues a reset code, replacing any pending code for the phone.
func (s *AuthService) RequestPasswordReset(ctx context.Context, phone string) (string, error) {
	if _, err := s.store.FindByPhone(phone); err != nil {
		log.Printf("[AUTH] Password reset requested for unknown phone: %s", phone)
		return "", err
	}
	return s.issueCode(ctx, phone, PurposePasswordReset)
}

// ResetPassword consumes a reset code and installs a new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	if _, err := s.store.FindByPhone(phone); err != nil {
		return models.ErrInvalidOrExpiredCode
	}

	// hash first so a rejected password leaves the code usable
	if newPassword == "" {
		return models.NewFieldError("password", "required")
	}
	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.otp.Verify(ctx, phone, code); err != nil {
		s.metrics.ObserveOTP("rejected")
		return err
	}
	s.metrics.ObserveOTP("verified")

	account, err := s.store.Mutate(phone, func(a *models.Account) error {
		a.PasswordHash = hashedPassword
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[AUTH] Password reset for %s", phone)
	s.audit.LogOperation(account.AccountNumber, "PASSWORD_RESET", "password replaced")
	return nil
}

// VerifyCurrentPassword reports whether password matches the account's credential.
// Unknown phones simply yield false.
func (s *AuthService) VerifyCurrentPassword(phone, password string) bool {
	account, err := s.store.FindByPhone(phone)
	if err != nil {
		return false
	}
	return s.hasher.Verify(password, account.PasswordHash)
}

func (s *AuthService) Account(phone string) (*models.Account, error) {
	return s.store.FindByPhone(phone)
}

func (s *AuthService) SetBiometrics(phone string, enabled bool) (*models.Account, error) {
	account, err := s.store.Mutate(phone, func(a *models.Account) error {
		a.BiometricsEnabled = enabled
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTH] Biometrics for %s set to %t", phone, enabled)
	return account, nil
}

func (s *AuthService) UpdateProfile(phone, name string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewFieldError("name", "required")
	}
	return s.store.Mutate(phone, func(a *models.Account) error {
		a.Name = name
		return nil
	})
}

// DemoUser describes a pre-verified account created at startup
type DemoUser struct {
	Name          string
	Phone         string
	AccountNumber string
	Balance       string
}

var DemoUsers = []DemoUser{
	{Name: "Destiny Ogedengbe", Phone: "08012345678", AccountNumber: "2024202424", Balance: "55000.00"},
	{Name: "Sarah Connor", Phone: "08087654321", AccountNumber: "3030303030", Balance: "120000.50"},
}

const demoPassword = "password"

// SeedDemoUsers creates the demo wallets; already existing phones are skipped.
func (s *AuthService) SeedDemoUsers() error {
	for _, u := range DemoUsers {
		hashedPassword, err := s.hasher.Hash(demoPassword)
		if err != nil {
			return err
		}
		balance, err := models.ParseAmount(u.Balance)
		if err != nil {
			return fmt.Errorf("demo balance for %s: %w", u.Phone, err)
		}

		_, err = s.store.Create(&models.Account{
			ID:            uuid.NewString(),
			Name:          u.Name,
			Phone:         u.Phone,
			PasswordHash:  hashedPassword,
			Verified:      true,
			Balance:       balance,
			AccountNumber: u.AccountNumber,
		})
		if errors.Is(err, models.ErrDuplicatePhone) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", u.Phone, err)
		}
	}
	log.Printf("[AUTH] Seeded %d demo accounts", len(DemoUsers))
	return nil
}

func (s *AuthService) generateJWT(account *models.Account) (string, error) {
	// exp uses wall time because the middleware validates against it
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": account.ID,
		"phone":   account.Phone,
		"exp":     time.Now().Add(s.cfg.TokenTTL).Unix(),
	})

	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func generateAccountNumber() string {
	const digits = "0123456789"
	b := make([]byte, 10)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}
