package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jpay/wallet/internal/models"
)

// Journal receives every committed entry after the in-memory ledger has
// applied it. The ledger store remains authoritative; the journal is a
// write-behind audit trail.
type Journal interface {
	Record(ctx context.Context, accountNumber string, entry models.Entry, balanceAfter int64) error
	RecordTransfer(ctx context.Context, from, to Posting) error
}

// Posting is one side of a transfer as written to the journal
type Posting struct {
	AccountNumber string
	Entry         models.Entry
	BalanceAfter  int64
}

// Nop discards everything; used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, string, models.Entry, int64) error { return nil }
func (Nop) RecordTransfer(context.Context, Posting, Posting) error   { return nil }

const schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	id             BIGSERIAL PRIMARY KEY,
	reference      TEXT NOT NULL UNIQUE,
	account_number TEXT NOT NULL,
	direction      TEXT NOT NULL,
	amount         BIGINT NOT NULL CHECK (amount > 0),
	balance        BIGINT NOT NULL,
	description    TEXT NOT NULL,
	category       TEXT NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
)`

const insertEntry = `
		INSERT INTO ledger_entries (reference, account_number, direction, amount, balance, description, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (j *PostgresJournal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create ledger_entries: %w", err)
	}
	return nil
}

func (j *PostgresJournal) Record(ctx context.Context, accountNumber string, entry models.Entry, balanceAfter int64) error {
	_, err := j.db.ExecContext(ctx, insertEntry, entryArgs(accountNumber, entry, balanceAfter)...)
	if err != nil {
		return fmt.Errorf("journal entry %s: %w", entry.Reference, err)
	}
	return nil
}

// RecordTransfer writes both legs in one database transaction.
func (j *PostgresJournal) RecordTransfer(ctx context.Context, from, to Posting) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range []Posting{from, to} {
		if _, err := tx.ExecContext(ctx, insertEntry, entryArgs(p.AccountNumber, p.Entry, p.BalanceAfter)...); err != nil {
			return fmt.Errorf("journal entry %s: %w", p.Entry.Reference, err)
		}
	}

	return tx.Commit()
}

func entryArgs(accountNumber string, e models.Entry, balanceAfter int64) []any {
	return []any{
		e.Reference,
		accountNumber,
		string(e.Direction),
		e.Amount,
		balanceAfter,
		e.Description,
		string(e.Category),
		string(e.Status),
		e.Timestamp,
	}
}
