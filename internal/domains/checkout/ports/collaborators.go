package ports

import (
	"context"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// Groomers answers whether a groomer takes a set of pet types and at what price.
type Groomers interface {
	Accepts(ctx context.Context, groomerName string, petTypes []grooming.PetType) (grooming.PriceQuote, error)
}

// Appointments is the appointments collaborator as seen by the checkout and refund sagas.
type Appointments interface {
	Duration(ctx context.Context, start, end time.Time) (domain.StayDuration, error)
	Create(ctx context.Context, appointment domain.Appointment) (string, error)
	Transaction(ctx context.Context, appointmentID string) (string, error)
	Delete(ctx context.Context, appointmentID string) error
}

// Payments is the payment provider.
type Payments interface {
	CreateSession(ctx context.Context, charge domain.ChargeRequest) (*domain.PaymentSession, error)
	// Refund reverses a transaction: a paid session is refunded, an unpaid one is voided.
	Refund(ctx context.Context, transactionID, idempotencyKey string) error
}
