package memory

import (
	"context"
	"sync"

	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/ports"
)

// Deliverer receives published greetings in-process.
type Deliverer interface {
	Deliver(ctx context.Context, msg domain.Message) error
}

// Publisher keeps greetings in memory and optionally delivers them straight away. Used when no
// queue is configured.
type Publisher struct {
	mu        sync.RWMutex
	published []domain.Message
	deliverer Deliverer
}

func NewPublisher(deliverer Deliverer) *Publisher {
	return &Publisher{deliverer: deliverer}
}

func (p *Publisher) Publish(ctx context.Context, msg domain.Message) error {
	p.mu.Lock()
	p.published = append(p.published, msg)
	p.mu.Unlock()
	if p.deliverer == nil {
		return nil
	}
	return p.deliverer.Deliver(ctx, msg)
}

// Published returns every message seen so far.
func (p *Publisher) Published() []domain.Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.Message{}, p.published...)
}

var _ ports.Publisher = (*Publisher)(nil)
