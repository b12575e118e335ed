package services

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/models"
)

type SavingsService struct {
	store     *ledger.Store
	transfers *TransferService
}

func NewSavingsService(store *ledger.Store, transfers *TransferService) *SavingsService {
	return &SavingsService{store: store, transfers: transfers}
}

// CreateGoal adds an empty savings goal to the account.
func (s *SavingsService) CreateGoal(phone, name string, target int64) (*models.SavingsGoal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewFieldError("name", "required")
	}
	if target <= 0 {
		return nil, models.ErrInvalidAmount
	}

	goal := models.SavingsGoal{ID: "goal-" + uuid.NewString(), Name: name, TargetAmount: target}
	if _, err := s.store.Mutate(phone, func(a *models.Account) error {
		a.Goals = append(a.Goals, goal)
		return nil
	}); err != nil {
		return nil, err
	}

	log.Printf("[SAVINGS] Goal %q created for %s, target %d kobo", name, phone, target)
	return &goal, nil
}

// Contribute moves amount from the balance into the goal. Contributions past
// the target are accepted; the goal simply ends up over-funded.
func (s *SavingsService) Contribute(ctx context.Context, phone, goalID string, amount int64) (*models.Account, error) {
	account, err := s.store.FindByPhone(phone)
	if err != nil {
		return nil, err
	}
	idx, ok := account.Goal(goalID)
	if !ok {
		return nil, models.ErrGoalNotFound
	}

	description := "Contribution to " + account.Goals[idx].Name
	updated, err := s.transfers.debit(ctx, phone, amount, description, models.ServiceSavings, func(a *models.Account) error {
		i, ok := a.Goal(goalID)
		if !ok {
			return models.ErrGoalNotFound
		}
		a.Goals[i].CurrentAmount += amount
		return nil
	})
	if err != nil {
		log.Printf("[SAVINGS] Contribution to %s by %s failed: %v", goalID, phone, err)
		return nil, err
	}

	log.Printf("[SAVINGS] %s contributed %d kobo to %s", phone, amount, goalID)
	return updated, nil
}
