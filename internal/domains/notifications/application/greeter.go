package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/notifications/ports"
)

// Greeter delivers greetings consumed from the channel. Redelivery sends the same text again,
// which recipients tolerate.
type Greeter struct {
	sender ports.Sender
	logger *slog.Logger
}

// NewGreeter builds a greeter. Without a sender greetings are only logged.
func NewGreeter(sender ports.Sender, logger *slog.Logger) *Greeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Greeter{sender: sender, logger: logger}
}

// Deliver sends the greeting for msg.
func (g *Greeter) Deliver(ctx context.Context, msg domain.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body := msg.Greeting()
	if g.sender == nil {
		g.logger.InfoContext(ctx, "greeting", slog.String("recipient.type", string(msg.RecipientType)), slog.String("contact.no", msg.ContactNo), slog.String("body", body))
		return nil
	}
	if err := g.sender.Send(ctx, msg.ContactNo, body); err != nil {
		return fmt.Errorf("send %s greeting: %w", msg.RecipientType, err)
	}
	g.logger.InfoContext(ctx, "greeting sent", slog.String("recipient.type", string(msg.RecipientType)))
	return nil
}
