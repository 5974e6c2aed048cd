package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// Steps are the individual saga steps. The inline saga and the durable activities both
// run exactly these, so each step's classification is the same on either path.
type Steps struct {
	groomers     ports.Groomers
	appointments ports.Appointments
	payments     ports.Payments
}

// NewSteps wires the collaborators.
func NewSteps(groomers ports.Groomers, appointments ports.Appointments, payments ports.Payments) (*Steps, error) {
	if groomers == nil || appointments == nil || payments == nil {
		return nil, errors.New("checkout steps require groomers, appointments and payments collaborators")
	}
	return &Steps{groomers: groomers, appointments: appointments, payments: payments}, nil
}

// CheckAcceptance asks the groomer to accept every pet type and returns its price quote.
func (s *Steps) CheckAcceptance(ctx context.Context, req domain.CheckoutRequest) (grooming.PriceQuote, error) {
	quote, err := s.groomers.Accepts(ctx, req.GroomerName, req.PetTypes())
	if err != nil {
		return nil, ensureKind(err, fault.KindInternalError)
	}
	return quote, nil
}

// ResolveDuration asks the appointments collaborator for the number of billable days.
func (s *Steps) ResolveDuration(ctx context.Context, req domain.CheckoutRequest) (domain.StayDuration, error) {
	days, err := s.appointments.Duration(ctx, req.Start, req.End)
	if err != nil {
		return 0, ensureKind(err, fault.KindInternalError)
	}
	if err := days.Validate(); err != nil {
		return 0, fault.Wrap(fault.KindInvalidRange, err.Error(), err)
	}
	return days, nil
}

// ResolvePrice selects the tier's price; the total is rate times days.
func ResolvePrice(quote grooming.PriceQuote, tier grooming.PriceTier, days domain.StayDuration) (grooming.TierPrice, float64, error) {
	price, ok := quote.Lookup(tier)
	if !ok {
		return grooming.TierPrice{}, 0, fault.InvalidTier(fmt.Sprintf("price tier %s is not offered", tier))
	}
	if !price.HasRate() {
		// The provider price decides the charge; no local total is known.
		return price, 0, nil
	}
	return price, price.Rate * float64(days), nil
}

// CreatePaymentSession opens the payment session for the charge.
func (s *Steps) CreatePaymentSession(ctx context.Context, charge domain.ChargeRequest) (*domain.PaymentSession, error) {
	session, err := s.payments.CreateSession(ctx, charge)
	if err != nil {
		return nil, ensureKind(err, fault.KindPaymentError)
	}
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return nil, fault.PaymentError("payment provider returned no session")
	}
	return session, nil
}

// PersistAppointment creates the payment-linked appointment.
func (s *Steps) PersistAppointment(ctx context.Context, appt domain.Appointment) (string, error) {
	id, err := s.appointments.Create(ctx, appt)
	if err != nil {
		return "", ensureKind(err, fault.KindPersistenceError)
	}
	return id, nil
}

// CancelPayment is the compensating action for a payment session whose appointment was never persisted.
func (s *Steps) CancelPayment(ctx context.Context, transactionID, idempotencyKey string) error {
	return ensureKind(s.payments.Refund(ctx, transactionID, idempotencyKey), fault.KindPaymentError)
}

// LookupTransaction resolves an appointment's payment transaction.
func (s *Steps) LookupTransaction(ctx context.Context, appointmentID string) (string, error) {
	tx, err := s.appointments.Transaction(ctx, appointmentID)
	if err != nil {
		return "", ensureKind(err, fault.KindInternalError)
	}
	return tx, nil
}

// RefundPayment refunds a transaction.
func (s *Steps) RefundPayment(ctx context.Context, transactionID, idempotencyKey string) error {
	return ensureKind(s.payments.Refund(ctx, transactionID, idempotencyKey), fault.KindPaymentError)
}

// DeleteAppointment removes a refunded appointment.
func (s *Steps) DeleteAppointment(ctx context.Context, appointmentID string) error {
	return ensureKind(s.appointments.Delete(ctx, appointmentID), fault.KindPersistenceError)
}
