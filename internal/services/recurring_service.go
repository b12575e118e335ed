package services

import (
	"log"

	"github.com/jpay/wallet/internal/audit"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/scheduler"
)

// RecurringService keeps each account's standing instructions. Due dates come
// from the scheduler only.
type RecurringService struct {
	store     *ledger.Store
	scheduler *scheduler.Scheduler
	audit     *audit.AuditLogger
}

func NewRecurringService(store *ledger.Store, s *scheduler.Scheduler, auditLogger *audit.AuditLogger) *RecurringService {
	if auditLogger == nil {
		auditLogger = audit.NewAuditLogger(nil)
	}
	return &RecurringService{store: store, scheduler: s, audit: auditLogger}
}

// RecurrenceAllowed reports whether a request may be repeated. Funding
// requests (card top-ups and gift-card sales) never recur.
func RecurrenceAllowed(service models.ServiceID, form models.FormData) bool {
	switch {
	case service == models.ServiceAddFunds:
		return false
	case service == models.ServiceGiftCard && form.Get(models.FieldGiftAction) == models.GiftCardSell:
		return false
	}
	return service.Valid()
}

func (s *RecurringService) Create(phone string, service models.ServiceID, amount int64, description string, freq models.Frequency, form models.FormData) (*models.RecurringInstruction, error) {
	if !RecurrenceAllowed(service, form) {
		return nil, models.ErrRecurrenceNotAllowed
	}

	in, err := s.scheduler.Materialize(service, amount, description, freq, form)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Mutate(phone, func(a *models.Account) error {
		a.Recurring = append(a.Recurring, in)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[RECURRING] %s scheduled %s %s, next due %s", phone, in.Frequency, in.ServiceID, in.NextDueDate.Format("2006-01-02"))
	s.audit.LogOperation(account.AccountNumber, "RECURRING_CREATED", in.ID)
	return &in, nil
}

// Edit replaces an instruction's amount, description, frequency and form
// snapshot, recomputing the due date from now.
func (s *RecurringService) Edit(phone, id string, amount int64, description string, freq models.Frequency, form models.FormData) (*models.RecurringInstruction, error) {
	var updated models.RecurringInstruction
	account, err := s.store.Mutate(phone, func(a *models.Account) error {
		idx, ok := a.Instruction(id)
		if !ok {
			return models.ErrInstructionNotFound
		}
		in, err := s.scheduler.Update(a.Recurring[idx], amount, description, freq, form)
		if err != nil {
			return err
		}
		a.Recurring[idx] = in
		updated = in
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[RECURRING] %s updated %s, next due %s", phone, id, updated.NextDueDate.Format("2006-01-02"))
	s.audit.LogOperation(account.AccountNumber, "RECURRING_UPDATED", id)
	return &updated, nil
}

func (s *RecurringService) Cancel(phone, id string) error {
	account, err := s.store.Mutate(phone, func(a *models.Account) error {
		idx, ok := a.Instruction(id)
		if !ok {
			return models.ErrInstructionNotFound
		}
		a.Recurring = append(a.Recurring[:idx], a.Recurring[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[RECURRING] %s cancelled %s", phone, id)
	s.audit.LogOperation(account.AccountNumber, "RECURRING_CANCELLED", id)
	return nil
}

func (s *RecurringService) Get(phone, id string) (*models.RecurringInstruction, error) {
	account, err := s.store.FindByPhone(phone)
	if err != nil {
		return nil, err
	}
	idx, ok := account.Instruction(id)
	if !ok {
		return nil, models.ErrInstructionNotFound
	}
	in := account.Recurring[idx]
	return &in, nil
}

func (s *RecurringService) List(phone string) ([]models.RecurringInstruction, error) {
	account, err := s.store.FindByPhone(phone)
	if err != nil {
		return nil, err
	}
	return account.Recurring, nil
}
