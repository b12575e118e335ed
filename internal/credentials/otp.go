package credentials

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/models"
)

const (
	DefaultCodeLength = 6
	DefaultCodeTTL    = 5 * time.Minute
)

// StoredCode is what a CodeStore keeps per phone: a digest of the code and its absolute expiry.
type StoredCode struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CodeStore persists at most one pending code per phone.
type CodeStore interface {
	Put(ctx context.Context, phone string, code StoredCode) error
	Get(ctx context.Context, phone string) (StoredCode, bool, error)
	Delete(ctx context.Context, phone string) error
}

// MemoryCodeStore keeps codes for the lifetime of the process.
// Expired codes are not purged; the verifier treats them as invalid.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]StoredCode
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]StoredCode)}
}

func (m *MemoryCodeStore) Put(_ context.Context, phone string, code StoredCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = code
	return nil
}

func (m *MemoryCodeStore) Get(_ context.Context, phone string) (StoredCode, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[phone]
	return code, ok, nil
}

func (m *MemoryCodeStore) Delete(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, phone)
	return nil
}

// OTPService issues and checks single-use, time-boxed numeric codes.
type OTPService struct {
	store  CodeStore
	clock  clock.Clock
	ttl    time.Duration
	length int

	// consume serialises check-and-delete so a code cannot be used twice
	consume sync.Mutex
}

func NewOTPService(store CodeStore, clk clock.Clock, length int, ttl time.Duration) *OTPService {
	if store == nil {
		store = NewMemoryCodeStore()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if length <= 0 {
		length = DefaultCodeLength
	}
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &OTPService{store: store, clock: clk, ttl: ttl, length: length}
}

// Issue generates a fresh code for phone, replacing any pending one, and returns
// it for out-of-band delivery.
func (s *OTPService) Issue(ctx context.Context, phone string) (string, time.Time, error) {
	code, err := generateCode(s.length)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate code: %w", err)
	}

	expiresAt := s.clock.Now().Add(s.ttl)
	if err := s.store.Put(ctx, phone, StoredCode{Hash: hashCode(phone, code), ExpiresAt: expiresAt}); err != nil {
		return "", time.Time{}, fmt.Errorf("store code: %w", err)
	}

	log.Printf("[OTP] Code issued for %s, expires %s", phone, expiresAt.Format(time.RFC3339))
	return code, expiresAt, nil
}

// Verify consumes the pending code for phone if it matches and has not expired.
// A mismatch leaves the stored code in place.
func (s *OTPService) Verify(ctx context.Context, phone, code string) error {
	s.consume.Lock()
	defer s.consume.Unlock()

	stored, ok, err := s.store.Get(ctx, phone)
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if !ok {
		return models.ErrInvalidOrExpiredCode
	}
	if !s.clock.Now().Before(stored.ExpiresAt) {
		log.Printf("[OTP] Expired code presented for %s", phone)
		return models.ErrInvalidOrExpiredCode
	}
	if subtle.ConstantTimeCompare([]byte(hashCode(phone, code)), []byte(stored.Hash)) != 1 {
		log.Printf("[OTP] Wrong code presented for %s", phone)
		return models.ErrInvalidOrExpiredCode
	}

	if err := s.store.Delete(ctx, phone); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	log.Printf("[OTP] Code verified for %s", phone)
	return nil
}

func generateCode(length int) (string, error) {
	const charset = "0123456789"
	code := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := range code {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		code[i] = charset[n.Int64()]
	}
	return string(code), nil
}

func hashCode(phone, code string) string {
	sum := sha256.Sum256([]byte(phone + ":" + code))
	return hex.EncodeToString(sum[:])
}
