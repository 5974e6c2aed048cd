package ports

import (
	"context"
	"errors"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
)

var ErrSagaNotFound = errors.New("saga not found")

// Journal records saga executions for inspection and manual cleanup.
type Journal interface {
	Start(ctx context.Context, record domain.SagaRecord) error
	Finish(ctx context.Context, record domain.SagaRecord) error
	Get(ctx context.Context, id string) (*domain.SagaRecord, error)
	List(ctx context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error)
	// Purge deletes entries with the given outcome that finished before cutoff.
	Purge(ctx context.Context, outcome domain.Outcome, cutoff time.Time) (int64, error)
}
