package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jpay/wallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry(ref string, dir models.Direction) models.Entry {
	return models.Entry{
		ID:          ref,
		Reference:   ref,
		Direction:   dir,
		Amount:      250000,
		Description: "Transfer to Sarah Connor",
		Category:    models.ServiceJPayTransfer,
		Status:      models.EntryStatusCompleted,
		Timestamp:   time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestPostgresJournal_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	j := NewPostgresJournal(db)
	e := sampleEntry("JPTXN-1", models.DirectionDebit)

	t.Run("inserts one row", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs("JPTXN-1", "2024202424", "debit", int64(250000), int64(5250000), e.Description, "jpayTransfer", "completed", e.Timestamp).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, j.Record(context.Background(), "2024202424", e, 5250000))
	})

	t.Run("wraps errors", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO ledger_entries").WillReturnError(errors.New("duplicate key"))
		err := j.Record(context.Background(), "2024202424", e, 5250000)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "JPTXN-1")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJournal_RecordTransfer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	j := NewPostgresJournal(db)
	from := Posting{AccountNumber: "2024202424", Entry: sampleEntry("JPTXN-1-S", models.DirectionDebit), BalanceAfter: 5250000}
	to := Posting{AccountNumber: "3030303030", Entry: sampleEntry("JPTXN-1-R", models.DirectionCredit), BalanceAfter: 12250050}

	t.Run("both legs commit together", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs("JPTXN-1-S", "2024202424", "debit", int64(250000), int64(5250000), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").
			WithArgs("JPTXN-1-R", "3030303030", "credit", int64(250000), int64(12250050), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		assert.NoError(t, j.RecordTransfer(context.Background(), from, to))
	})

	t.Run("second leg failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO ledger_entries").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO ledger_entries").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		assert.Error(t, j.RecordTransfer(context.Background(), from, to))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJournal_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ledger_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, NewPostgresJournal(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
