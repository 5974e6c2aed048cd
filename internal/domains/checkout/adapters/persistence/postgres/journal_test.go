package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestJournal_PurgeFiltersByOutcomeAndCutoff(t *testing.T) {
	db, mock := newMockDB(t)
	journal := NewJournal(db)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "saga_journal" WHERE (finished_at IS NOT NULL AND finished_at < $1) AND outcome = $2`)).
		WithArgs(cutoff, string(domain.OutcomeCompleted)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := journal.Purge(context.Background(), domain.OutcomeCompleted, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(3), purged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_GetMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	journal := NewJournal(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "saga_journal" WHERE id = $1`)).
		WithArgs("nope", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := journal.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ports.ErrSagaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_ListByOutcome(t *testing.T) {
	db, mock := newMockDB(t)
	journal := NewJournal(db)
	started := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "kind", "outcome", "steps", "started_at", "failure_kind"}).
		AddRow("s1", "checkout", "compensated", "{accepts:ok,payment:ok,appointment:PersistenceError,compensate:ok}", started, "PersistenceError")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "saga_journal" WHERE outcome = $1 ORDER BY started_at DESC,id`)).
		WithArgs("compensated").
		WillReturnRows(rows)

	records, err := journal.List(context.Background(), domain.OutcomeCompensated)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.SagaCheckout, records[0].Kind)
	require.Equal(t, "compensate:ok", records[0].Steps[3])
	require.Equal(t, started, records[0].StartedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_NotConfigured(t *testing.T) {
	var journal *Journal
	_, err := journal.List(context.Background(), "")
	require.Error(t, err)
}

func TestIdempotencyStore_PurgeExpired(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewIdempotencyStore(db)
	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "checkout_idempotency_keys" WHERE created_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	purged, err := store.PurgeExpired(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(2), purged)
	require.NoError(t, mock.ExpectationsWereMet())
}
