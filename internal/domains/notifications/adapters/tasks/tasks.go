// Package tasks carries greetings over Redis-backed asynq queues.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/ports"
)

const (
	// TypeGreeting is the task type of a sign-up greeting.
	TypeGreeting = "notification:greeting"
	// DefaultQueue is used when no queue is configured.
	DefaultQueue = "sms"
	// MaxRetry bounds redelivery of one greeting.
	MaxRetry = 5
)

// NewGreetingTask encodes msg as an asynq task.
func NewGreetingTask(msg domain.Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGreeting, payload), nil
}

// Enqueuer is the part of *asynq.Client the publisher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher enqueues greetings.
type Publisher struct {
	client Enqueuer
	queue  string
	logger *slog.Logger
}

func NewPublisher(client Enqueuer, queue string, logger *slog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{client: client, queue: queue, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, msg domain.Message) error {
	task, err := NewGreetingTask(msg)
	if err != nil {
		return fmt.Errorf("encode greeting: %w", err)
	}
	info, err := p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue), asynq.MaxRetry(MaxRetry))
	if err != nil {
		return fmt.Errorf("enqueue greeting: %w", err)
	}
	p.logger.DebugContext(ctx, "greeting enqueued", slog.String("task.id", info.ID), slog.String("queue", info.Queue))
	return nil
}

// Deliverer is what the consumer hands decoded greetings to.
type Deliverer interface {
	Deliver(ctx context.Context, msg domain.Message) error
}

// NewServeMux routes greeting tasks to d.
func NewServeMux(d Deliverer, logger *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGreeting, HandleGreeting(d, logger))
	return mux
}

// HandleGreeting decodes and delivers one greeting. Undecodable or invalid payloads are not retried.
func HandleGreeting(d Deliverer, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, task *asynq.Task) error {
		var msg domain.Message
		if err := json.Unmarshal(task.Payload(), &msg); err != nil {
			logger.ErrorContext(ctx, "invalid greeting payload", slog.String("error", err.Error()))
			return fmt.Errorf("decode greeting: %v: %w", err, asynq.SkipRetry)
		}
		if err := msg.Validate(); err != nil {
			logger.ErrorContext(ctx, "invalid greeting", slog.String("error", err.Error()))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := d.Deliver(ctx, msg); err != nil {
			logger.WarnContext(ctx, "greeting delivery failed", slog.String("recipient.type", string(msg.RecipientType)), slog.String("error", err.Error()))
			return err
		}
		return nil
	}
}

// ErrorHandler logs greeting failures, telling dropped tasks apart from ones asynq will retry.
func ErrorHandler(logger *slog.Logger) asynq.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
		if isSkipRetry(err) {
			logger.ErrorContext(ctx, "greeting dropped", slog.String("task.type", task.Type()), slog.String("error", err.Error()))
			return
		}
		logger.WarnContext(ctx, "greeting will be retried", slog.String("task.type", task.Type()), slog.String("error", err.Error()))
	})
}

func isSkipRetry(err error) bool {
	return errors.Is(err, asynq.SkipRetry)
}

var _ ports.Publisher = (*Publisher)(nil)
