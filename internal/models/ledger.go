package models

import (
	"time"
)

// Direction of an entry relative to the account that owns it
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

type EntryStatus string

const (
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusFailed    EntryStatus = "failed"
)

// Entry is one immutable line item in an account's history
type Entry struct {
	ID          string      `json:"id" db:"id"`
	Direction   Direction   `json:"type" db:"direction"`
	Description string      `json:"description" db:"description"`
	Amount      int64       `json:"amount" db:"amount"` // in kobo
	Timestamp   time.Time   `json:"date" db:"created_at"`
	Category    ServiceID   `json:"icon" db:"category"`
	Status      EntryStatus `json:"status" db:"status"`
	Reference   string      `json:"reference" db:"reference"`
}

type SavingsGoal struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  int64  `json:"targetAmount"`
	CurrentAmount int64  `json:"currentAmount"`
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// RecurringInstruction is a standing request to repeat a payment
type RecurringInstruction struct {
	ID          string    `json:"id"`
	ServiceID   ServiceID `json:"serviceId"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Frequency   Frequency `json:"frequency"`
	NextDueDate time.Time `json:"nextDueDate"`
	FormData    FormData  `json:"formData"`
}

type Account struct {
	ID                string                 `json:"id" db:"id"`
	Name              string                 `json:"name" db:"name"`
	Phone             string                 `json:"phone" db:"phone"`
	PasswordHash      string                 `json:"-" db:"password_hash"`
	Verified          bool                   `json:"isVerified" db:"verified"`
	Balance           int64                  `json:"balance" db:"balance"` // in kobo
	AccountNumber     string                 `json:"accountNumber" db:"account_number"`
	BiometricsEnabled bool                   `json:"biometricsEnabled" db:"biometrics_enabled"`
	Entries           []Entry                `json:"transactions"` // most recent first
	Goals             []SavingsGoal          `json:"savingsGoals"`
	Recurring         []RecurringInstruction `json:"recurringPayments"`
	CreatedAt         time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time              `json:"updatedAt" db:"updated_at"`
}

// Clone returns a deep copy so callers never share slices with the store
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Entries = append([]Entry(nil), a.Entries...)
	c.Goals = append([]SavingsGoal(nil), a.Goals...)
	c.Recurring = make([]RecurringInstruction, len(a.Recurring))
	for i, ri := range a.Recurring {
		ri.FormData = ri.FormData.Clone()
		c.Recurring[i] = ri
	}
	return &c
}

func (a *Account) Goal(id string) (int, bool) {
	for i := range a.Goals {
		if a.Goals[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (a *Account) Instruction(id string) (int, bool) {
	for i := range a.Recurring {
		if a.Recurring[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
