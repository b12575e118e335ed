package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jpay/wallet/internal/audit"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/events"
	"github.com/jpay/wallet/internal/journal"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/metrics"
	"github.com/jpay/wallet/internal/models"
)

// TransferService composes ledger primitives into debit, credit and
// peer-to-peer transfer operations.
type TransferService struct {
	store     *ledger.Store
	journal   journal.Journal
	audit     *audit.AuditLogger
	metrics   *metrics.Metrics
	publisher events.Publisher
	clock     clock.Clock
}

func NewTransferService(store *ledger.Store, j journal.Journal, auditLogger *audit.AuditLogger, m *metrics.Metrics, publisher events.Publisher, clk clock.Clock) *TransferService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if j == nil {
		j = journal.Nop{}
	}
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger(clk)
	}
	if publisher == nil {
		publisher = events.Fallback{}
	}
	return &TransferService{
		store:     store,
		journal:   j,
		audit:     auditLogger,
		metrics:   m,
		publisher: publisher,
		clock:     clk,
	}
}

// newReference returns JPTXN-<unix ms>-<8 hex>; the random tail keeps
// references unique within the same millisecond.
func newReference(clk clock.Clock) string {
	tail := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("JPTXN-%d-%s", clk.Now().UnixMilli(), tail)
}

func newEntry(clk clock.Clock, description string, service models.ServiceID, reference string) models.Entry {
	return models.Entry{
		ID:          uuid.NewString(),
		Description: description,
		Timestamp:   clk.Now(),
		Category:    service,
		Status:      models.EntryStatusCompleted,
		Reference:   reference,
	}
}

// ApplyDebit commits a completed debit entry, failing with ErrInsufficientFunds
// when the balance cannot cover amount.
func (s *TransferService) ApplyDebit(ctx context.Context, phone string, amount int64, description string, service models.ServiceID) (*models.Account, error) {
	return s.debit(ctx, phone, amount, description, service, nil)
}

// debit commits a debit entry; when also is set it runs inside the same
// account mutation so related state (a savings goal) changes with the balance.
func (s *TransferService) debit(ctx context.Context, phone string, amount int64, description string, service models.ServiceID, also func(*models.Account) error) (*models.Account, error) {
	ref := newReference(s.clock)
	entry := newEntry(s.clock, description, service, ref)

	var account *models.Account
	var err error
	switch {
	case also == nil:
		account, err = s.store.Debit(phone, amount, entry)
	case amount <= 0:
		err = models.ErrInvalidAmount
	default:
		entry.Direction = models.DirectionDebit
		entry.Amount = amount
		account, err = s.store.Mutate(phone, func(a *models.Account) error {
			if a.Balance < amount {
				return models.ErrInsufficientFunds
			}
			if err := also(a); err != nil {
				return err
			}
			a.Balance -= amount
			a.Entries = append([]models.Entry{entry}, a.Entries...)
			return nil
		})
	}
	s.metrics.ObserveCommit("debit", amount, err)
	if err != nil {
		log.Printf("[LEDGER] Debit of %d for %s failed: %v", amount, phone, err)
		s.audit.LogError(ref, phone, err)
		return nil, err
	}

	committed := account.Entries[0]
	log.Printf("[LEDGER] Debit %s committed on %s: %d kobo", ref, account.AccountNumber, amount)
	s.audit.LogMovement("DEBIT", ref, account.AccountNumber, amount, string(service))
	s.afterCommit(ctx, account, committed)
	return account, nil
}

// ApplyCredit commits a completed credit entry.
func (s *TransferService) ApplyCredit(ctx context.Context, phone string, amount int64, description string, service models.ServiceID) (*models.Account, error) {
	ref := newReference(s.clock)
	entry := newEntry(s.clock, description, service, ref)

	account, err := s.store.Credit(phone, amount, entry)
	s.metrics.ObserveCommit("credit", amount, err)
	if err != nil {
		log.Printf("[LEDGER] Credit of %d for %s failed: %v", amount, phone, err)
		s.audit.LogError(ref, phone, err)
		return nil, err
	}

	committed := account.Entries[0]
	log.Printf("[LEDGER] Credit %s committed on %s: %d kobo", ref, account.AccountNumber, amount)
	s.audit.LogMovement("CREDIT", ref, account.AccountNumber, amount, string(service))
	s.afterCommit(ctx, account, committed)
	return account, nil
}

// P2PTransfer moves amount from the sender to the wallet holding
// recipientAccountNumber. Both sides commit together with distinct references.
func (s *TransferService) P2PTransfer(ctx context.Context, senderPhone, recipientAccountNumber string, amount int64, description string) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	sender, err := s.store.FindByPhone(senderPhone)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.FindByAccountNumber(recipientAccountNumber)
	if err != nil {
		s.metrics.ObserveCommit("transfer", amount, models.ErrRecipientNotFound)
		return nil, models.ErrRecipientNotFound
	}
	if recipient.ID == sender.ID {
		s.metrics.ObserveCommit("transfer", amount, models.ErrSelfTransfer)
		return nil, models.ErrSelfTransfer
	}

	base := newReference(s.clock)
	debit := newEntry(s.clock, transferDescription("Transfer to", recipient.Name, description), models.ServiceJPayTransfer, base+"-S")
	credit := newEntry(s.clock, transferDescription("Transfer from", sender.Name, description), models.ServiceJPayTransfer, base+"-R")

	from, to, err := s.store.Transfer(sender.Phone, recipient.Phone, amount, debit, credit)
	s.metrics.ObserveCommit("transfer", amount, err)
	if err != nil {
		log.Printf("[LEDGER] Transfer %s from %s to %s failed: %v", base, sender.AccountNumber, recipientAccountNumber, err)
		s.audit.LogTransfer(base, sender.AccountNumber, recipientAccountNumber, amount, "FAILED")
		return nil, err
	}

	result := &models.TransferResult{
		Sender:    from,
		Recipient: to,
		Debit:     from.Entries[0],
		Credit:    to.Entries[0],
	}

	log.Printf("[LEDGER] Transfer %s committed: %s -> %s, %d kobo", base, from.AccountNumber, to.AccountNumber, amount)
	s.audit.LogTransfer(base, from.AccountNumber, to.AccountNumber, amount, "SUCCESS")

	if err := s.journal.RecordTransfer(ctx,
		journal.Posting{AccountNumber: from.AccountNumber, Entry: result.Debit, BalanceAfter: from.Balance},
		journal.Posting{AccountNumber: to.AccountNumber, Entry: result.Credit, BalanceAfter: to.Balance},
	); err != nil {
		log.Printf("[LEDGER] Journal write for %s failed: %v", base, err)
	}
	s.publishCommitted(ctx, from.AccountNumber, result.Debit)
	s.publishCommitted(ctx, to.AccountNumber, result.Credit)

	return result, nil
}

// afterCommit runs the write-behind side effects of a single-sided commit.
// Failures are logged only; the ledger has already changed.
func (s *TransferService) afterCommit(ctx context.Context, account *models.Account, entry models.Entry) {
	if err := s.journal.Record(ctx, account.AccountNumber, entry, account.Balance); err != nil {
		log.Printf("[LEDGER] Journal write for %s failed: %v", entry.Reference, err)
	}
	s.publishCommitted(ctx, account.AccountNumber, entry)
}

func (s *TransferService) publishCommitted(ctx context.Context, accountNumber string, entry models.Entry) {
	err := s.publisher.Publish(ctx, events.RouteTransactionCommitted, events.TransactionCommitted{
		AccountNumber: accountNumber,
		Reference:     entry.Reference,
		Direction:     string(entry.Direction),
		Amount:        entry.Amount,
		Service:       string(entry.Category),
		Description:   entry.Description,
		Timestamp:     entry.Timestamp,
	})
	if err != nil {
		log.Printf("[LEDGER] Event for %s not published: %v", entry.Reference, err)
	}
}

func transferDescription(prefix, name, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Sprintf("%s %s", prefix, name)
	}
	return fmt.Sprintf("%s %s. %s", prefix, name, note)
}
