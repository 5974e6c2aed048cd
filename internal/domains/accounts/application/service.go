package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/ports"
	notificationsdomain "github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// Service passes account operations through to the user and groomer services. Successful
// registrations are followed by a greeting handed to the notifier.
type Service struct {
	users    ports.UserDirectory
	groomers ports.GroomerDirectory
	notifier ports.Notifier
}

func NewService(users ports.UserDirectory, groomers ports.GroomerDirectory, notifier ports.Notifier) *Service {
	if notifier == nil {
		notifier = ports.NoopNotifier
	}
	return &Service{users: users, groomers: groomers, notifier: notifier}
}

func (s *Service) CreateUser(ctx context.Context, user domain.User) error {
	user = trimUser(user)
	if err := user.Validate(); err != nil {
		return mapError(err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.notifier.Notify(ctx, notificationsdomain.Message{RecipientType: notificationsdomain.RecipientUser, ContactNo: user.ContactNo})
	return nil
}

func (s *Service) GetUser(ctx context.Context, name string) (*domain.User, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, strings.TrimSpace(name))
}

func (s *Service) UpdateUser(ctx context.Context, name string, update domain.UserUpdate) error {
	if err := requireName(name); err != nil {
		return err
	}
	if update.ContactNo == nil && update.Email == nil {
		return mapError(domain.ErrEmptyUpdate)
	}
	return s.users.Update(ctx, strings.TrimSpace(name), update)
}

func (s *Service) CreateGroomer(ctx context.Context, groomer domain.Groomer) (json.RawMessage, error) {
	groomer.Name = strings.TrimSpace(groomer.Name)
	if err := groomer.Validate(); err != nil {
		return nil, mapError(err)
	}
	body, err := s.groomers.Create(ctx, groomer)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notificationsdomain.Message{RecipientType: notificationsdomain.RecipientGroomer, ContactNo: groomer.ContactNo})
	return body, nil
}

func (s *Service) SearchGroomers(ctx context.Context, keyword string) ([]domain.Groomer, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	return s.groomers.SearchByKeyword(ctx, strings.TrimSpace(keyword))
}

func (s *Service) GetGroomer(ctx context.Context, name string) (*domain.Groomer, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	return s.groomers.SearchByName(ctx, strings.TrimSpace(name))
}

func (s *Service) UpdateGroomer(ctx context.Context, name string, update domain.GroomerUpdate) error {
	if err := requireName(name); err != nil {
		return err
	}
	if err := update.Validate(); err != nil {
		return mapError(err)
	}
	return s.groomers.Update(ctx, strings.TrimSpace(name), update)
}

func (s *Service) ListGroomers(ctx context.Context, filter domain.GroomerFilter) ([]domain.Groomer, error) {
	if err := filter.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.groomers.Read(ctx, filter)
}

// Accepts reports the groomer's prices when it takes every pet type listed.
func (s *Service) Accepts(ctx context.Context, name string, petTypes []grooming.PetType) (grooming.PriceQuote, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	if len(petTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one pet type is required", ErrInvalidInput)
	}
	for i, t := range petTypes {
		if _, err := grooming.ParsePetType(string(t)); err != nil {
			return nil, mapError(fmt.Errorf("petTypes[%d]: %w", i, err))
		}
	}
	return s.groomers.Accepts(ctx, strings.TrimSpace(name), petTypes)
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return mapError(domain.ErrEmptyName)
	}
	return nil
}

func trimUser(u domain.User) domain.User {
	u.Name = strings.TrimSpace(u.Name)
	u.ContactNo = strings.TrimSpace(u.ContactNo)
	u.Email = strings.TrimSpace(u.Email)
	return u
}

// IsInvalidInput reports whether err was raised before any collaborator was called.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

var _ ports.Service = (*Service)(nil)
