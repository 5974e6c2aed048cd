//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	checkoutpostgres "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/persistence/postgres"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("orchestrator_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			_ = sqlDB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	})
	return db
}

func TestPostgresJournal_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupPostgresContainer(t)
	journal := checkoutpostgres.NewJournal(db)
	ctx := context.Background()
	started := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Microsecond)

	require.NoError(t, journal.Start(ctx, domain.SagaRecord{ID: "s1", Kind: domain.SagaCheckout, GroomerName: "Acme", Outcome: domain.OutcomeRunning, StartedAt: started}))
	finished := started.Add(time.Minute)
	require.NoError(t, journal.Finish(ctx, domain.SagaRecord{
		ID: "s1", Kind: domain.SagaCheckout, TransactionID: "cs_1", Outcome: domain.OutcomeCompensated,
		Steps: []string{"accepts:ok", "appointment:PersistenceError", "compensate:ok"}, FinishedAt: &finished,
	}))

	rec, err := journal.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCompensated, rec.Outcome)
	require.Equal(t, "Acme", rec.GroomerName)
	require.Len(t, rec.Steps, 3)

	purged, err := journal.Purge(ctx, domain.OutcomeCompensated, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)
	_, err = journal.Get(ctx, "s1")
	require.ErrorIs(t, err, ports.ErrSagaNotFound)
}

func TestPostgresIdempotencyStore_Conflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := setupPostgresContainer(t)
	store := checkoutpostgres.NewIdempotencyStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", Result: domain.CheckoutResult{AppointmentID: "a1"}, CreatedAt: time.Now()})
	require.NoError(t, err)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2", CreatedAt: time.Now()})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, "a1", existing.Result.AppointmentID)
}
