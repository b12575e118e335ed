package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jpay/wallet/internal/events"
	"github.com/jpay/wallet/internal/models"
	"github.com/robfig/cron/v3"
)

// AccountLister yields copies of every account; the ledger store satisfies it.
type AccountLister interface {
	Accounts() []*models.Account
}

// DueSweeper periodically publishes a reminder for every instruction whose due
// time has passed. Each (instruction, due date) pair is announced once.
// Payments are never executed here.
type DueSweeper struct {
	cron      *cron.Cron
	schedule  string
	accounts  AccountLister
	scheduler *Scheduler
	publisher events.Publisher

	mu       sync.Mutex
	reminded map[string]time.Time
}

func NewDueSweeper(schedule string, accounts AccountLister, s *Scheduler, publisher events.Publisher) *DueSweeper {
	if publisher == nil {
		publisher = events.Fallback{}
	}
	cronLogger := cron.PrintfLogger(log.Default())
	return &DueSweeper{
		cron:      cron.New(cron.WithChain(cron.Recover(cronLogger))),
		schedule:  schedule,
		accounts:  accounts,
		scheduler: s,
		publisher: publisher,
		reminded:  make(map[string]time.Time),
	}
}

// Start registers the sweep job and starts the cron runner.
func (d *DueSweeper) Start() error {
	if _, err := d.cron.AddFunc(d.schedule, func() { d.Sweep(context.Background()) }); err != nil {
		log.Printf("[SCHEDULER] Failed to schedule due sweep %q: %v", d.schedule, err)
		return err
	}
	log.Printf("[SCHEDULER] Due sweep scheduled: %s", d.schedule)
	d.cron.Start()
	return nil
}

// Stop halts the runner; the returned context is done once running jobs finish.
func (d *DueSweeper) Stop() context.Context {
	return d.cron.Stop()
}

// Sweep publishes reminders for newly due instructions and returns how many were sent.
func (d *DueSweeper) Sweep(ctx context.Context) int {
	sent := 0
	seen := make(map[string]struct{})
	for _, acct := range d.accounts.Accounts() {
		for _, in := range acct.Recurring {
			seen[in.ID] = struct{}{}
			if !d.scheduler.Due(in) || !d.markReminded(in) {
				continue
			}

			err := d.publisher.Publish(ctx, events.RouteRecurringDue, events.RecurringDue{
				AccountNumber: acct.AccountNumber,
				Phone:         acct.Phone,
				InstructionID: in.ID,
				Service:       string(in.ServiceID),
				Amount:        in.Amount,
				Description:   in.Description,
				DueAt:         in.NextDueDate,
			})
			if err != nil {
				log.Printf("[SCHEDULER] Reminder for %s failed: %v", in.ID, err)
				d.unmark(in)
				continue
			}
			sent++
		}
	}
	d.prune(seen)
	if sent > 0 {
		log.Printf("[SCHEDULER] Sent %d due reminders", sent)
	}
	return sent
}

// prune forgets instructions that were cancelled since the last sweep
func (d *DueSweeper) prune(seen map[string]struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.reminded {
		if _, ok := seen[id]; !ok {
			delete(d.reminded, id)
		}
	}
}

func (d *DueSweeper) markReminded(in models.RecurringInstruction) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if due, ok := d.reminded[in.ID]; ok && due.Equal(in.NextDueDate) {
		return false
	}
	d.reminded[in.ID] = in.NextDueDate
	return true
}

func (d *DueSweeper) unmark(in models.RecurringInstruction) {
	d.mu.Lock()
	delete(d.reminded, in.ID)
	d.mu.Unlock()
}
