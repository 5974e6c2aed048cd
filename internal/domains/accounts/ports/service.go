package ports

import (
	"context"
	"encoding/json"

	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// Service exposes the account use cases to adapters.
type Service interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, name string) (*domain.User, error)
	UpdateUser(ctx context.Context, name string, update domain.UserUpdate) error

	CreateGroomer(ctx context.Context, groomer domain.Groomer) (json.RawMessage, error)
	SearchGroomers(ctx context.Context, keyword string) ([]domain.Groomer, error)
	GetGroomer(ctx context.Context, name string) (*domain.Groomer, error)
	UpdateGroomer(ctx context.Context, name string, update domain.GroomerUpdate) error
	ListGroomers(ctx context.Context, filter domain.GroomerFilter) ([]domain.Groomer, error)
	Accepts(ctx context.Context, name string, petTypes []grooming.PetType) (grooming.PriceQuote, error)
}
