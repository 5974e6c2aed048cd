package ports

import (
	"context"
	"encoding/json"

	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	notificationsdomain "github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// UserDirectory is the user service.
type UserDirectory interface {
	Create(ctx context.Context, user domain.User) error
	Get(ctx context.Context, name string) (*domain.User, error)
	Update(ctx context.Context, name string, update domain.UserUpdate) error
}

// GroomerDirectory is the groomer service.
type GroomerDirectory interface {
	Accepts(ctx context.Context, groomerName string, petTypes []grooming.PetType) (grooming.PriceQuote, error)
	Create(ctx context.Context, groomer domain.Groomer) (json.RawMessage, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]domain.Groomer, error)
	SearchByName(ctx context.Context, name string) (*domain.Groomer, error)
	Update(ctx context.Context, name string, update domain.GroomerUpdate) error
	Read(ctx context.Context, filter domain.GroomerFilter) ([]domain.Groomer, error)
}

// Notifier hands a greeting to the notification channel without waiting for delivery.
type Notifier interface {
	Notify(ctx context.Context, msg notificationsdomain.Message)
}

// NoopNotifier drops every message.
var NoopNotifier Notifier = noopNotifier{}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, notificationsdomain.Message) {}
