package scheduler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/models"
)

// NextDueDate advances from by one period of freq. Monthly steps land on the
// same day of the following month, clamped to that month's last day.
func NextDueDate(freq models.Frequency, from time.Time) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return addMonthClamped(from), nil
	}
	return time.Time{}, fmt.Errorf("unknown frequency %q: %w", freq, models.ErrInvalidField)
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	firstOfNext := time.Date(year, month+1, 1, hour, min, sec, t.Nanosecond(), t.Location())
	last := daysIn(firstOfNext.Year(), firstOfNext.Month(), t.Location())
	if day > last {
		day = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Scheduler builds and re-times recurring instructions. It never executes them.
type Scheduler struct {
	clock clock.Clock
}

func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Scheduler{clock: clk}
}

// Materialize creates an instruction due one period from now.
func (s *Scheduler) Materialize(service models.ServiceID, amount int64, description string, freq models.Frequency, form models.FormData) (models.RecurringInstruction, error) {
	if amount <= 0 {
		return models.RecurringInstruction{}, models.ErrInvalidAmount
	}
	next, err := NextDueDate(freq, s.clock.Now())
	if err != nil {
		return models.RecurringInstruction{}, err
	}

	return models.RecurringInstruction{
		ID:          "rp-" + uuid.NewString(),
		ServiceID:   service,
		Description: description,
		Amount:      amount,
		Frequency:   freq,
		NextDueDate: next,
		FormData:    form.Clone(),
	}, nil
}

// Update replaces the snapshot and recomputes the due date from now, not from
// the previous due date.
func (s *Scheduler) Update(in models.RecurringInstruction, amount int64, description string, freq models.Frequency, form models.FormData) (models.RecurringInstruction, error) {
	if amount <= 0 {
		return in, models.ErrInvalidAmount
	}
	next, err := NextDueDate(freq, s.clock.Now())
	if err != nil {
		return in, err
	}

	in.Amount = amount
	in.Description = description
	in.Frequency = freq
	in.FormData = form.Clone()
	in.NextDueDate = next
	return in, nil
}

// Due reports whether the instruction's next due time has been reached.
func (s *Scheduler) Due(in models.RecurringInstruction) bool {
	return !s.clock.Now().Before(in.NextDueDate)
}
