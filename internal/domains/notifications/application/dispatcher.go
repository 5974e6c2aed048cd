package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/ports"
)

// DefaultPublishTimeout bounds one background publish.
const DefaultPublishTimeout = 5 * time.Second

// Dispatcher publishes greetings in the background so callers never wait on the channel.
type Dispatcher struct {
	publisher ports.Publisher
	logger    *slog.Logger
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPublishTimeout bounds each publish.
func WithPublishTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		if logger != nil {
			disp.logger = logger
		}
	}
}

func NewDispatcher(publisher ports.Publisher, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{publisher: publisher, logger: slog.Default(), timeout: DefaultPublishTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Notify returns immediately. The publish runs on a context detached from the caller's
// cancellation and bounded by the publish timeout; failures are logged only.
func (d *Dispatcher) Notify(ctx context.Context, msg domain.Message) {
	if err := msg.Validate(); err != nil {
		d.logger.WarnContext(ctx, "dropping invalid notification", slog.String("recipient.type", string(msg.RecipientType)), slog.String("error", err.Error()))
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.WarnContext(ctx, "dispatcher closed, dropping notification", slog.String("recipient.type", string(msg.RecipientType)))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		publishCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if err := d.publisher.Publish(publishCtx, msg); err != nil {
			d.logger.ErrorContext(publishCtx, "failed to publish notification",
				slog.String("recipient.type", string(msg.RecipientType)),
				slog.String("error", err.Error()),
			)
			return
		}
		d.logger.DebugContext(publishCtx, "notification published", slog.String("recipient.type", string(msg.RecipientType)))
	}()
}

// Close stops accepting messages and waits for in-flight publishes or ctx expiry.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
