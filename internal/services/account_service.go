package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/metrics"
	"github.com/jpay/wallet/internal/models"
)

const meterHolderName = "John Doe"

// directoryNames stand in for the external banks' name-enquiry responses
var directoryNames = []string{"Adekunle Adebayo", "Chiamaka Nwosu", "Musa Ibrahim", "Fatima Bello"}

type MeterVerification struct {
	MeterNumber string `json:"meterNumber"`
	Name        string `json:"name"`
	Disco       string `json:"disco"`
}

// AccountService resolves transfer recipients and electricity meters.
// Every lookup is bounded by timeout; an overrun is reported as ErrVerificationFailed.
type AccountService struct {
	store   *ledger.Store
	catalog *CatalogService
	metrics *metrics.Metrics
	timeout time.Duration
	latency time.Duration
}

func NewAccountService(store *ledger.Store, catalog *CatalogService, m *metrics.Metrics, timeout time.Duration) *AccountService {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &AccountService{store: store, catalog: catalog, metrics: m, timeout: timeout}
}

// WithLatency simulates the round trip to the external directory.
func (s *AccountService) WithLatency(d time.Duration) *AccountService {
	s.latency = d
	return s
}

// ResolveAccountNumber returns the display name registered to accountNumber on network.
func (s *AccountService) ResolveAccountNumber(ctx context.Context, accountNumber, network string) (string, error) {
	accountNumber = strings.TrimSpace(accountNumber)

	return s.lookup(ctx, func() (string, error) {
		if network == NetworkJPay {
			account, err := s.store.FindByAccountNumber(accountNumber)
			if err != nil {
				log.Printf("[ACCOUNT] J pay account %s not found", accountNumber)
				return "", models.ErrRecipientNotFound
			}
			return account.Name, nil
		}

		if _, ok := s.catalog.Bank(network); !ok {
			log.Printf("[ACCOUNT] Unsupported bank %q", network)
			return "", fmt.Errorf("%w: unsupported bank %q", models.ErrVerificationFailed, network)
		}
		if !digits10Pattern.MatchString(accountNumber) {
			return "", fmt.Errorf("%w: invalid account number format", models.ErrVerificationFailed)
		}
		return directoryName(accountNumber), nil
	})
}

// VerifyMeter confirms a prepaid meter and reports its holder and the disco serving state.
func (s *AccountService) VerifyMeter(ctx context.Context, meterNumber, state string) (*MeterVerification, error) {
	meterNumber = strings.TrimSpace(meterNumber)

	name, err := s.lookup(ctx, func() (string, error) {
		if len(meterNumber) < 10 || strings.Trim(meterNumber, "0123456789") != "" {
			log.Printf("[ACCOUNT] Invalid meter number %q", meterNumber)
			return "", fmt.Errorf("%w: invalid meter number", models.ErrVerificationFailed)
		}
		return meterHolderName, nil
	})
	if err != nil {
		return nil, err
	}

	disco, ok := s.catalog.Disco(state)
	if !ok {
		disco = "N/A"
	}
	return &MeterVerification{MeterNumber: meterNumber, Name: name, Disco: disco}, nil
}

func (s *AccountService) lookup(ctx context.Context, resolve func() (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() { s.metrics.ObserveVerification(time.Since(start).Seconds()) }()

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			log.Printf("[ACCOUNT] Lookup abandoned: %v", ctx.Err())
			return "", fmt.Errorf("%w: %v", models.ErrVerificationFailed, ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrVerificationFailed, err)
	}
	return resolve()
}

// directoryName picks a stable name for an account number from its digit sum
func directoryName(accountNumber string) string {
	sum := 0
	for _, r := range accountNumber {
		sum += int(r - '0')
	}
	return directoryNames[sum%len(directoryNames)]
}
