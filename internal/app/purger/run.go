// Package purger removes finished saga journal entries and stale idempotency keys.
package purger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/app/bootstrap"
	"github.com/tropicbliss/ESD-Project/internal/app/config"
	checkoutpostgres "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/persistence/postgres"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	platformpostgres "github.com/tropicbliss/ESD-Project/internal/platform/postgres"
)

const serviceName = "orchestrator-journal-purger"

// JournalPurger deletes journal entries by outcome.
type JournalPurger interface {
	Purge(ctx context.Context, outcome domain.Outcome, cutoff time.Time) (int64, error)
}

// KeyPurger deletes idempotency keys created before cutoff.
type KeyPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Result reports how many rows one purge removed.
type Result struct {
	Sagas int64
	Keys  int64
}

// Run connects to PostgreSQL and purges once.
func Run(ctx context.Context, cfg config.Config) error {
	instruments, flush, err := bootstrap.InitObservability(ctx, serviceName, cfg)
	if err != nil {
		return err
	}
	defer flush()
	logger := instruments.Logger

	db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		return errors.New("POSTGRES_DSN not set or connection failed; cannot purge saga journal")
	}

	result, err := Purge(ctx, checkoutpostgres.NewJournal(db), checkoutpostgres.NewIdempotencyStore(db), cfg, time.Now())
	if err != nil {
		return err
	}
	logger.Info("journal purge completed", slog.Int64("sagas", result.Sagas), slog.Int64("idempotency_keys", result.Keys))
	return nil
}

// Purge deletes completed sagas older than JOURNAL_RETENTION and idempotency keys older
// than IDEMPOTENCY_TTL. Compensated and failed sagas are kept for inspection.
func Purge(ctx context.Context, journal JournalPurger, keys KeyPurger, cfg config.Config, now time.Time) (Result, error) {
	var result Result
	if cfg.JournalRetention <= 0 {
		return result, errors.New("JOURNAL_RETENTION must be positive")
	}
	sagas, err := journal.Purge(ctx, domain.OutcomeCompleted, now.Add(-cfg.JournalRetention))
	if err != nil {
		return result, fmt.Errorf("purge saga journal: %w", err)
	}
	result.Sagas = sagas
	if keys == nil || cfg.IdempotencyTTL <= 0 {
		return result, nil
	}
	purged, err := keys.PurgeExpired(ctx, now.Add(-cfg.IdempotencyTTL))
	if err != nil {
		return result, fmt.Errorf("purge idempotency keys: %w", err)
	}
	result.Keys = purged
	return result, nil
}
