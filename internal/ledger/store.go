package ledger

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/models"
)

var ErrDuplicateAccountNumber = errors.New("account number already in use")

// slot owns one account. Its mutex is the account-level lock.
type slot struct {
	mu      sync.Mutex
	id      string
	account *models.Account
}

// Store is the authoritative in-memory holder of accounts, indexed by phone
// and by account number. Every mutation replaces balance and entries together
// under the account's lock; readers receive deep copies.
type Store struct {
	mu       sync.RWMutex
	byPhone  map[string]*slot
	byNumber map[string]*slot
	clock    clock.Clock
}

func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{
		byPhone:  make(map[string]*slot),
		byNumber: make(map[string]*slot),
		clock:    clk,
	}
}

// Create registers a new account. Phone and account number must both be unique.
func (s *Store) Create(account *models.Account) (*models.Account, error) {
	if account == nil || account.Phone == "" || account.AccountNumber == "" || account.ID == "" {
		return nil, fmt.Errorf("create account: %w", models.ErrInvalidField)
	}
	if account.Balance < 0 {
		return nil, models.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPhone[account.Phone]; exists {
		return nil, models.ErrDuplicatePhone
	}
	if _, exists := s.byNumber[account.AccountNumber]; exists {
		return nil, ErrDuplicateAccountNumber
	}

	stored := account.Clone()
	now := s.clock.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	sl := &slot{id: stored.ID, account: stored}
	s.byPhone[stored.Phone] = sl
	s.byNumber[stored.AccountNumber] = sl

	log.Printf("[LEDGER] Account %s created for %s", stored.AccountNumber, stored.Phone)
	return stored.Clone(), nil
}

func (s *Store) lookupPhone(phone string) (*slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.byPhone[phone]
	return sl, ok
}

func (s *Store) lookupNumber(number string) (*slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.byNumber[number]
	return sl, ok
}

func (sl *slot) snapshot() *models.Account {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.account.Clone()
}

func (s *Store) FindByPhone(phone string) (*models.Account, error) {
	sl, ok := s.lookupPhone(phone)
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return sl.snapshot(), nil
}

func (s *Store) FindByAccountNumber(number string) (*models.Account, error) {
	sl, ok := s.lookupNumber(number)
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return sl.snapshot(), nil
}

func (s *Store) AccountNumberTaken(number string) bool {
	_, ok := s.lookupNumber(number)
	return ok
}

// Accounts returns a copy of every account, in no particular order.
func (s *Store) Accounts() []*models.Account {
	s.mu.RLock()
	slots := make([]*slot, 0, len(s.byPhone))
	for _, sl := range s.byPhone {
		slots = append(slots, sl)
	}
	s.mu.RUnlock()

	out := make([]*models.Account, 0, len(slots))
	for _, sl := range slots {
		out = append(out, sl.snapshot())
	}
	return out
}

// Snapshot reads several accounts under all of their locks at once, giving a
// view in which no transfer between them is half applied.
func (s *Store) Snapshot(phones ...string) ([]*models.Account, error) {
	slots := make([]*slot, 0, len(phones))
	for _, phone := range phones {
		sl, ok := s.lookupPhone(phone)
		if !ok {
			return nil, models.ErrAccountNotFound
		}
		slots = append(slots, sl)
	}

	unlock := lockOrdered(slots)
	defer unlock()

	out := make([]*models.Account, len(slots))
	for i, sl := range slots {
		out[i] = sl.account.Clone()
	}
	return out, nil
}

// Mutate applies fn to a working copy of the account and, if fn succeeds and
// the balance is still non-negative, installs the copy as the new state.
// Identity fields cannot be changed through Mutate.
func (s *Store) Mutate(phone string, fn func(*models.Account) error) (*models.Account, error) {
	sl, ok := s.lookupPhone(phone)
	if !ok {
		return nil, models.ErrAccountNotFound
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	working := sl.account.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	if working.Balance < 0 {
		return nil, models.ErrInsufficientFunds
	}

	working.ID = sl.account.ID
	working.Phone = sl.account.Phone
	working.AccountNumber = sl.account.AccountNumber
	working.UpdatedAt = s.clock.Now()
	sl.account = working

	return working.Clone(), nil
}

// Credit adds amount to the balance and prepends entry.
func (s *Store) Credit(phone string, amount int64, entry models.Entry) (*models.Account, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	entry.Direction = models.DirectionCredit
	entry.Amount = amount

	return s.Mutate(phone, func(a *models.Account) error {
		if a.Balance > math.MaxInt64-amount {
			return models.ErrInvalidAmount
		}
		a.Balance += amount
		a.Entries = prepend(a.Entries, entry)
		return nil
	})
}

// Debit subtracts amount and prepends entry; it fails closed when funds are short.
func (s *Store) Debit(phone string, amount int64, entry models.Entry) (*models.Account, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	entry.Direction = models.DirectionDebit
	entry.Amount = amount

	return s.Mutate(phone, func(a *models.Account) error {
		if a.Balance < amount {
			return models.ErrInsufficientFunds
		}
		a.Balance -= amount
		a.Entries = prepend(a.Entries, entry)
		return nil
	})
}

// Transfer moves amount between two accounts holding both locks, acquired in
// account-id order. Either both sides change or neither does.
func (s *Store) Transfer(fromPhone, toPhone string, amount int64, debit, credit models.Entry) (*models.Account, *models.Account, error) {
	if amount <= 0 {
		return nil, nil, models.ErrInvalidAmount
	}

	from, ok := s.lookupPhone(fromPhone)
	if !ok {
		return nil, nil, models.ErrAccountNotFound
	}
	to, ok := s.lookupPhone(toPhone)
	if !ok {
		return nil, nil, models.ErrRecipientNotFound
	}
	if from == to {
		return nil, nil, models.ErrSelfTransfer
	}

	unlock := lockOrdered([]*slot{from, to})
	defer unlock()

	if from.account.Balance < amount {
		return nil, nil, models.ErrInsufficientFunds
	}
	if to.account.Balance > math.MaxInt64-amount {
		return nil, nil, models.ErrInvalidAmount
	}

	debit.Direction = models.DirectionDebit
	debit.Amount = amount
	credit.Direction = models.DirectionCredit
	credit.Amount = amount

	now := s.clock.Now()

	sender := from.account.Clone()
	sender.Balance -= amount
	sender.Entries = prepend(sender.Entries, debit)
	sender.UpdatedAt = now

	recipient := to.account.Clone()
	recipient.Balance += amount
	recipient.Entries = prepend(recipient.Entries, credit)
	recipient.UpdatedAt = now

	from.account = sender
	to.account = recipient

	return sender.Clone(), recipient.Clone(), nil
}

// lockOrdered locks distinct slots in ascending id order and returns the unlock func.
func lockOrdered(slots []*slot) func() {
	ordered := make([]*slot, 0, len(slots))
	seen := make(map[*slot]bool, len(slots))
	for _, sl := range slots {
		if !seen[sl] {
			seen[sl] = true
			ordered = append(ordered, sl)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].id < ordered[j].id })

	for _, sl := range ordered {
		sl.mu.Lock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].mu.Unlock()
		}
	}
}

func prepend(entries []models.Entry, e models.Entry) []models.Entry {
	out := make([]models.Entry, 0, len(entries)+1)
	out = append(out, e)
	return append(out, entries...)
}
