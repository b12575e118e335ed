package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/jpay/wallet/internal/clock"
)

type AuditEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AccountID     string    `json:"account_id"`
	Amount        int64     `json:"amount,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// Sink receives encoded audit lines; the default writes through the standard logger.
type Sink func(line string)

type AuditLogger struct {
	clock clock.Clock
	sink  Sink
}

func NewAuditLogger(clk clock.Clock) *AuditLogger {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &AuditLogger{
		clock: clk,
		sink:  func(line string) { log.Printf("AUDIT: %s", line) },
	}
}

// WithSink redirects output, mainly for tests.
func (a *AuditLogger) WithSink(sink Sink) *AuditLogger {
	a.sink = sink
	return a
}

func (a *AuditLogger) LogTransfer(reference, fromAccount, toAccount string, amount int64, status string) {
	a.log(AuditEvent{
		EventType:     "TRANSFER",
		TransactionID: reference,
		AccountID:     fromAccount,
		Amount:        amount,
		Status:        status,
		Details: map[string]string{
			"from_account": fromAccount,
			"to_account":   toAccount,
		},
	})
}

// LogMovement records a single-sided DEBIT or CREDIT.
func (a *AuditLogger) LogMovement(kind, reference, account string, amount int64, service string) {
	a.log(AuditEvent{
		EventType:     kind,
		TransactionID: reference,
		AccountID:     account,
		Amount:        amount,
		Status:        "SUCCESS",
		Details:       map[string]string{"service": service},
	})
}

func (a *AuditLogger) LogError(reference, accountID string, err error) {
	a.log(AuditEvent{
		EventType:     "ERROR",
		TransactionID: reference,
		AccountID:     accountID,
		Status:        "FAILED",
		Details:       map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) LogOperation(accountID, operation, details string) {
	a.log(AuditEvent{
		EventType: operation,
		AccountID: accountID,
		Status:    "SUCCESS",
		Details:   map[string]string{"details": details},
	})
}

func (a *AuditLogger) LogFailure(accountID, operation string, err error) {
	a.log(AuditEvent{
		EventType: operation,
		AccountID: accountID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	event.Timestamp = a.clock.Now()
	data, _ := json.Marshal(event)
	a.sink(string(data))
}
