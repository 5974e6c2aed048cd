// Package redisstore keeps checkout idempotency records in Redis so every API replica
// replays the same result.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

const keyPrefix = "checkout:idempotency:"

// IdempotencyStore persists idempotency keys in Redis with a TTL.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewIdempotencyStore wires a Redis-backed store. A non-positive ttl keeps records forever.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl, now: time.Now}
}

type storedRecord struct {
	RequestHash string          `json:"requestHash"`
	Result      json.RawMessage `json:"result"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Get loads a record by key, returning nil when absent or expired.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(key, raw)
}

// Save stores the record with SETNX. If the key already exists the stored record is returned,
// together with ErrIdempotencyConflict when the fingerprints differ.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(storedRecord{RequestHash: record.RequestHash, Result: result, CreatedAt: record.CreatedAt})
	if err != nil {
		return nil, err
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	created, err := s.client.SetNX(ctx, keyPrefix+record.Key, payload, ttl).Result()
	if err != nil {
		return nil, err
	}
	if created {
		saved := record
		return &saved, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Expired between SETNX and GET; the caller's result stands.
		saved := record
		return &saved, nil
	}
	if existing.RequestHash != record.RequestHash {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}

func decode(key string, raw []byte) (*ports.IdempotencyRecord, error) {
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	record := &ports.IdempotencyRecord{Key: key, RequestHash: stored.RequestHash, CreatedAt: stored.CreatedAt}
	if len(stored.Result) > 0 {
		if err := json.Unmarshal(stored.Result, &record.Result); err != nil {
			return nil, err
		}
	}
	return record, nil
}
