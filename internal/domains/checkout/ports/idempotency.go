package ports

import (
	"context"
	"errors"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
)

// ErrIdempotencyConflict means the key already belongs to a different checkout request.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord is the successful checkout remembered under a client key. RequestHash
// fingerprints the request so a reused key with another body is refused.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Result      domain.CheckoutResult
	CreatedAt   time.Time
}

// IdempotencyStore remembers successful checkouts by key. The first Save for a key wins.
type IdempotencyStore interface {
	// Get returns nil, nil for an unknown or expired key.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save returns the winning record; a fingerprint mismatch also yields ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
