package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps checkout replays in process. Records older than the TTL are
// treated as absent; a zero TTL keeps them until purged.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]ports.IdempotencyRecord
	ttl  time.Duration
	now  func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]ports.IdempotencyRecord), now: time.Now}
}

// WithClock swaps the time source.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithTTL expires records lazily on read.
func (s *IdempotencyStore) WithTTL(ttl time.Duration) {
	s.ttl = ttl
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Save keeps the first record per key. A later save returns that record, and
// ErrIdempotencyConflict as well when its fingerprint differs.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if first, ok := s.lookup(record.Key); ok {
		if first.RequestHash != record.RequestHash {
			return &first, ports.ErrIdempotencyConflict
		}
		return &first, nil
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	s.keys[record.Key] = record
	return &record, nil
}

// PurgeExpired drops records created before cutoff.
func (s *IdempotencyStore) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, record := range s.keys {
		if record.CreatedAt.Before(cutoff) {
			delete(s.keys, key)
			n++
		}
	}
	return n, nil
}

func (s *IdempotencyStore) lookup(key string) (ports.IdempotencyRecord, bool) {
	record, ok := s.keys[key]
	if !ok {
		return ports.IdempotencyRecord{}, false
	}
	if s.ttl > 0 && s.now().Sub(record.CreatedAt) >= s.ttl {
		delete(s.keys, key)
		return ports.IdempotencyRecord{}, false
	}
	return record, true
}
