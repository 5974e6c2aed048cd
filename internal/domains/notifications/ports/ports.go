package ports

import (
	"context"

	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
)

// Publisher puts a message on the notification channel. Delivery is at-least-once.
type Publisher interface {
	Publish(ctx context.Context, msg domain.Message) error
}

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}
