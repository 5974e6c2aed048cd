package application

import (
	"errors"
	"fmt"

	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid account input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyContact) ||
		errors.Is(err, domain.ErrEmptyEmail) ||
		errors.Is(err, domain.ErrEmptyAddress) ||
		errors.Is(err, domain.ErrEmptyPicture) ||
		errors.Is(err, domain.ErrCapacity) ||
		errors.Is(err, domain.ErrNoAcceptedPets) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrEmptyUpdate) ||
		errors.Is(err, grooming.ErrUnknownPetType) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
