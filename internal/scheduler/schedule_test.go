package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name string
		freq models.Frequency
		from time.Time
		want time.Time
	}{
		{"daily", models.FrequencyDaily, date(2024, 3, 10), date(2024, 3, 11)},
		{"daily across year end", models.FrequencyDaily, date(2023, 12, 31), date(2024, 1, 1)},
		{"weekly", models.FrequencyWeekly, date(2024, 2, 26), date(2024, 3, 4)},
		{"monthly", models.FrequencyMonthly, date(2024, 3, 15), date(2024, 4, 15)},
		{"monthly clamps to leap february", models.FrequencyMonthly, date(2024, 1, 31), date(2024, 2, 29)},
		{"monthly clamps to february", models.FrequencyMonthly, date(2023, 1, 31), date(2023, 2, 28)},
		{"monthly clamps to 30 day month", models.FrequencyMonthly, date(2024, 3, 31), date(2024, 4, 30)},
		{"monthly across year end", models.FrequencyMonthly, date(2024, 12, 31), date(2025, 1, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.freq, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NextDueDate("yearly", date(2024, 1, 1))
	assert.ErrorIs(t, err, models.ErrInvalidField)
}

func TestScheduler_MaterializeAndUpdate(t *testing.T) {
	clk := clock.NewFixed(date(2024, 1, 31))
	s := New(clk)

	in, err := s.Materialize(models.ServiceAirtime, 50000, "Airtime for 08031234567", models.FrequencyMonthly, models.FormData{"phoneNumber": "08031234567"})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), in.NextDueDate)
	assert.Contains(t, in.ID, "rp-")

	t.Run("update recomputes from now", func(t *testing.T) {
		clk.Set(date(2024, 2, 10))
		updated, err := s.Update(in, 70000, "Airtime for 08031234567", models.FrequencyWeekly, models.FormData{"phoneNumber": "08031234567"})
		require.NoError(t, err)
		assert.Equal(t, in.ID, updated.ID)
		assert.Equal(t, date(2024, 2, 17), updated.NextDueDate)
		assert.Equal(t, int64(70000), updated.Amount)
	})

	t.Run("snapshot is copied", func(t *testing.T) {
		form := models.FormData{"phoneNumber": "08031234567"}
		in, err := s.Materialize(models.ServiceAirtime, 100, "x", models.FrequencyDaily, form)
		require.NoError(t, err)
		form["phoneNumber"] = "changed"
		assert.Equal(t, "08031234567", in.FormData["phoneNumber"])
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := s.Materialize(models.ServiceAirtime, 0, "x", models.FrequencyDaily, nil)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
		_, err = s.Materialize(models.ServiceAirtime, 100, "x", "hourly", nil)
		assert.ErrorIs(t, err, models.ErrInvalidField)
	})
}

type stubAccounts []*models.Account

func (s stubAccounts) Accounts() []*models.Account { return s }

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	return m.Called(routingKey, body).Error(0)
}

func (m *MockPublisher) Close() {}

func TestDueSweeper_Sweep(t *testing.T) {
	clk := clock.NewFixed(date(2024, 6, 1))
	accounts := stubAccounts{{
		Phone:         "08012345678",
		AccountNumber: "2024202424",
		Recurring: []models.RecurringInstruction{
			{ID: "rp-due", ServiceID: models.ServiceTV, Amount: 100, NextDueDate: date(2024, 5, 31)},
			{ID: "rp-later", ServiceID: models.ServiceData, Amount: 100, NextDueDate: date(2024, 6, 2)},
		},
	}}

	pub := &MockPublisher{}
	pub.On("Publish", "recurring.due", mock.AnythingOfType("events.RecurringDue")).Return(nil)

	sweeper := NewDueSweeper("@every 1m", accounts, New(clk), pub)

	assert.Equal(t, 1, sweeper.Sweep(context.Background()))
	assert.Equal(t, 0, sweeper.Sweep(context.Background()), "already reminded")

	clk.Advance(24 * time.Hour)
	assert.Equal(t, 1, sweeper.Sweep(context.Background()))
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestDueSweeper_ForgetsCancelledInstructions(t *testing.T) {
	clk := clock.NewFixed(date(2024, 6, 1))
	accounts := stubAccounts{{
		Phone:         "08012345678",
		AccountNumber: "2024202424",
		Recurring: []models.RecurringInstruction{
			{ID: "rp-due", ServiceID: models.ServiceTV, Amount: 100, NextDueDate: date(2024, 5, 31)},
		},
	}}

	pub := &MockPublisher{}
	pub.On("Publish", "recurring.due", mock.AnythingOfType("events.RecurringDue")).Return(nil)

	sweeper := NewDueSweeper("@every 1m", accounts, New(clk), pub)
	assert.Equal(t, 1, sweeper.Sweep(context.Background()))
	assert.Len(t, sweeper.reminded, 1)

	accounts[0].Recurring = nil
	assert.Equal(t, 0, sweeper.Sweep(context.Background()))
	assert.Empty(t, sweeper.reminded)
}
