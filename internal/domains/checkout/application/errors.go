package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// ErrInvalidInput signals the request violated a domain invariant before any collaborator was called.
var ErrInvalidInput = errors.New("invalid checkout input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidRange) || errors.Is(err, domain.ErrShortStay) {
		return fault.Wrap(fault.KindInvalidRange, err.Error(), err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// ensureKind classifies a collaborator error that arrived unclassified.
func ensureKind(err error, kind fault.Kind) error {
	if err == nil {
		return nil
	}
	if _, ok := fault.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fault.Wrap(fault.KindTimeout, "collaborator did not respond in time", err)
	}
	return fault.Wrap(kind, err.Error(), err)
}

// ValidateCheckout checks a checkout request before any collaborator is called.
func ValidateCheckout(req domain.CheckoutRequest) error {
	return mapError(req.Validate())
}

// ValidateRefund checks a refund request before any collaborator is called.
func ValidateRefund(req domain.RefundRequest) error {
	return mapError(req.Validate())
}
