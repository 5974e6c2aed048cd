package ports

import (
	"context"

	"github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
)

// AppointmentBook is the appointments service as seen by listings and status changes.
type AppointmentBook interface {
	ChangeStatus(ctx context.Context, change domain.StatusChange) error
	ForUser(ctx context.Context, userName string) ([]domain.AppointmentSummary, error)
	Arriving(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error)
	Staying(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error)
	Capacity(ctx context.Context, groomerName string) ([]domain.FutureCapacity, error)
}

// CommentBook is the comments service.
type CommentBook interface {
	ForGroomer(ctx context.Context, groomerName string) ([]domain.Comment, error)
}

// Service exposes booking read models and status changes to adapters.
type Service interface {
	ChangeStatus(ctx context.Context, change domain.StatusChange) error
	UserAppointments(ctx context.Context, userName string) ([]domain.AppointmentSummary, error)
	ArrivingCustomers(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error)
	StayingCustomers(ctx context.Context, groomerName string) ([]domain.CustomerAppointment, error)
	FutureCapacity(ctx context.Context, groomerName string) ([]domain.FutureCapacity, error)
	Comments(ctx context.Context, groomerName string) ([]domain.Comment, error)
}
