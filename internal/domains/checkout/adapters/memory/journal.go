package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
)

var _ ports.Journal = (*Journal)(nil)

// Journal keeps saga records in process memory.
type Journal struct {
	mu      sync.RWMutex
	records map[string]domain.SagaRecord
}

// NewJournal constructs an empty journal.
func NewJournal() *Journal {
	return &Journal{records: map[string]domain.SagaRecord{}}
}

func (j *Journal) Start(_ context.Context, record domain.SagaRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records[record.ID] = cloneRecord(record)
	return nil
}

// Finish overwrites the entry with its final state, keeping the original start time.
func (j *Journal) Finish(_ context.Context, record domain.SagaRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if existing, ok := j.records[record.ID]; ok && !existing.StartedAt.IsZero() {
		record.StartedAt = existing.StartedAt
	}
	j.records[record.ID] = cloneRecord(record)
	return nil
}

func (j *Journal) Get(_ context.Context, id string) (*domain.SagaRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	record, ok := j.records[id]
	if !ok {
		return nil, ports.ErrSagaNotFound
	}
	found := cloneRecord(record)
	return &found, nil
}

// List returns entries newest first; an empty outcome matches every entry.
func (j *Journal) List(_ context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]*domain.SagaRecord, 0, len(j.records))
	for _, record := range j.records {
		if outcome != "" && record.Outcome != outcome {
			continue
		}
		found := cloneRecord(record)
		out = append(out, &found)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].StartedAt.Equal(out[b].StartedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].StartedAt.After(out[b].StartedAt)
	})
	return out, nil
}

func (j *Journal) Purge(_ context.Context, outcome domain.Outcome, cutoff time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var purged int64
	for id, record := range j.records {
		if record.FinishedAt == nil || !record.FinishedAt.Before(cutoff) {
			continue
		}
		if outcome != "" && record.Outcome != outcome {
			continue
		}
		delete(j.records, id)
		purged++
	}
	return purged, nil
}

func cloneRecord(record domain.SagaRecord) domain.SagaRecord {
	record.Steps = append([]string(nil), record.Steps...)
	if record.FinishedAt != nil {
		finished := *record.FinishedAt
		record.FinishedAt = &finished
	}
	return record
}
