package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/models"
	"github.com/skip2/go-qrcode"
)

const paymentRequestTTL = 5 * time.Minute

var ErrInvalidPaymentRequest = errors.New("invalid or expired payment request")

// PaymentRequest is what a scanned wallet QR code resolves to. The payer
// feeds it into a J pay transfer flow.
type PaymentRequest struct {
	AccountNumber string    `json:"accountNumber"`
	Name          string    `json:"name"`
	Amount        int64     `json:"amount,omitempty"` // kobo; zero lets the payer choose
	Nonce         string    `json:"nonce"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type requestStore interface {
	put(ctx context.Context, code string, payload []byte, ttl time.Duration) error
	take(ctx context.Context, code string) ([]byte, error)
}

type redisRequestStore struct {
	client *redis.Client
}

func (s redisRequestStore) put(ctx context.Context, code string, payload []byte, ttl time.Duration) error {
	return s.client.Set(ctx, "qr:"+code, payload, ttl).Err()
}

func (s redisRequestStore) take(ctx context.Context, code string) ([]byte, error) {
	key := "qr:" + code
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrInvalidPaymentRequest
	}
	if err != nil {
		return nil, err
	}
	s.client.Del(ctx, key)
	return data, nil
}

type memoryRequest struct {
	payload   []byte
	expiresAt time.Time
}

type memoryRequestStore struct {
	mu    sync.Mutex
	clock clock.Clock
	items map[string]memoryRequest
}

func (s *memoryRequestStore) put(_ context.Context, code string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[code] = memoryRequest{payload: payload, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *memoryRequestStore) take(_ context.Context, code string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[code]
	delete(s.items, code)
	if !ok || !s.clock.Now().Before(item.expiresAt) {
		return nil, ErrInvalidPaymentRequest
	}
	return item.payload, nil
}

// QRService issues single-use payment request codes for receiving money.
// Codes live in redis when a client is configured, in memory otherwise.
type QRService struct {
	store    *ledger.Store
	requests requestStore
	clock    clock.Clock
}

func NewQRService(store *ledger.Store, rdb *redis.Client, clk clock.Clock) *QRService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	var requests requestStore = &memoryRequestStore{clock: clk, items: make(map[string]memoryRequest)}
	if rdb != nil {
		requests = redisRequestStore{client: rdb}
	}
	return &QRService{store: store, requests: requests, clock: clk}
}

// GenerateQRCode returns the request code and a base64 PNG encoding it.
func (s *QRService) GenerateQRCode(ctx context.Context, phone string, amount int64) (string, string, error) {
	if amount < 0 {
		return "", "", models.ErrInvalidAmount
	}
	account, err := s.store.FindByPhone(phone)
	if err != nil {
		return "", "", err
	}

	req := PaymentRequest{
		AccountNumber: account.AccountNumber,
		Name:          account.Name,
		Amount:        amount,
		Nonce:         s.generateNonce(),
		ExpiresAt:     s.clock.Now().Add(paymentRequestTTL),
	}
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", "", err
	}

	qrCode := base64.URLEncoding.EncodeToString(jsonData)
	if err := s.requests.put(ctx, qrCode, jsonData, paymentRequestTTL); err != nil {
		return "", "", fmt.Errorf("store payment request: %w", err)
	}

	qr, err := qrcode.New(qrCode, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	log.Printf("[QR] Payment request issued for %s (%d kobo)", account.AccountNumber, amount)
	return qrCode, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ProcessQRCode consumes a scanned code; a code resolves at most once.
func (s *QRService) ProcessQRCode(ctx context.Context, qrCode string) (*PaymentRequest, error) {
	data, err := s.requests.take(ctx, qrCode)
	if err != nil {
		return nil, err
	}

	var req PaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *QRService) generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
