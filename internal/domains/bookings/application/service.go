package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/bookings/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// ErrInvalidInput signals the request was rejected before reaching a collaborator.
var ErrInvalidInput = errors.New("invalid booking input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, grooming.ErrStatusFlow) {
		return fault.Wrap(fault.KindRejected, err.Error(), err)
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrEmptyGroomer) ||
		errors.Is(err, domain.ErrEmptyUser) ||
		errors.Is(err, grooming.ErrUnknownStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// Service serves appointment listings, capacity and comments, and forwards status changes.
type Service struct {
	appointments ports.AppointmentBook
	comments     ports.CommentBook
}

func NewService(appointments ports.AppointmentBook, comments ports.CommentBook) *Service {
	return &Service{appointments: appointments, comments: comments}
}

// ChangeStatus validates the new status before the appointments service sees it. When the
// caller names the current status a backward move is refused here; otherwise the appointments
// service enforces the flow.
func (s *Service) ChangeStatus(ctx context.Context, change domain.StatusChange) error {
	status, err := grooming.ParseStatus(string(change.Status))
	if err != nil {
		return mapError(err)
	}
	change.Status = status
	if change.From != "" {
		if change.From, err = grooming.ParseStatus(string(change.From)); err != nil {
			return mapError(err)
		}
	}
	change.AppointmentID = strings.TrimSpace(change.AppointmentID)
	if err := change.Validate(); err != nil {
		return mapError(err)
	}
	return s.appointments.ChangeStatus(ctx, change)
}

func (s *Service) UserAppointments(ctx context.Context, userName string) ([]domain.AppointmentSummary, error) {
	if err := domain.RequireName(userName, domain.ErrEmptyUser); err != nil {
		return nil, mapError(err)
	}
	return s.appointments.ForUser(ctx, strings.TrimSpace(userName))
}

func (s *Service) ArrivingCustomers(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error) {
	if err := domain.RequireName(groomerName, domain.ErrEmptyGroomer); err != nil {
		return nil, mapError(err)
	}
	return s.appointments.Arriving(ctx, strings.TrimSpace(groomerName))
}

func (s *Service) StayingCustomers(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error) {
	if err := domain.RequireName(groomerName, domain.ErrEmptyGroomer); err != nil {
		return nil, mapError(err)
	}
	return s.appointments.Staying(ctx, strings.TrimSpace(groomerName))
}

func (s *Service) FutureCapacity(ctx context.Context, groomerName string) ([]domain.FutureCapacity, error) {
	if err := domain.RequireName(groomerName, domain.ErrEmptyGroomer); err != nil {
		return nil, mapError(err)
	}
	return s.appointments.Capacity(ctx, strings.TrimSpace(groomerName))
}

func (s *Service) Comments(ctx context.Context, groomerName string) ([]domain.Comment, error) {
	if err := domain.RequireName(groomerName, domain.ErrEmptyGroomer); err != nil {
		return nil, mapError(err)
	}
	return s.comments.ForGroomer(ctx, strings.TrimSpace(groomerName))
}

var _ ports.Service = (*Service)(nil)
