package ports

import (
	"context"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
)

// Service defines the checkout use cases exposed to adapters (inbound/driving port).
type Service interface {
	Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error)
	Refund(ctx context.Context, req domain.RefundRequest) (*domain.RefundResult, error)
	GetSaga(ctx context.Context, id string) (*domain.SagaRecord, error)
	ListSagas(ctx context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error)
}
