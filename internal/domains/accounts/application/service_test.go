package application

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	notificationsdomain "github.com/tropicbliss/ESD-Project/internal/domains/notifications/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

type stubUsers struct {
	created []domain.User
	err     error
}

func (s *stubUsers) Create(_ context.Context, user domain.User) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, user)
	return nil
}

func (s *stubUsers) Get(_ context.Context, name string) (*domain.User, error) {
	for _, u := range s.created {
		if u.Name == name {
			u := u
			return &u, nil
		}
	}
	return nil, fault.NotFound("user not found")
}

func (s *stubUsers) Update(context.Context, string, domain.UserUpdate) error { return s.err }

type stubGroomers struct {
	quote   grooming.PriceQuote
	created []domain.Groomer
	err     error
}

func (s *stubGroomers) Accepts(context.Context, string, []grooming.PetType) (grooming.PriceQuote, error) {
	return s.quote, s.err
}

func (s *stubGroomers) Create(_ context.Context, g domain.Groomer) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, g)
	return json.RawMessage(`{"name":"` + g.Name + `"}`), nil
}

func (s *stubGroomers) SearchByKeyword(context.Context, string) ([]domain.Groomer, error) {
	return s.created, s.err
}

func (s *stubGroomers) SearchByName(_ context.Context, name string) (*domain.Groomer, error) {
	for _, g := range s.created {
		if g.Name == name {
			g := g
			return &g, nil
		}
	}
	return nil, fault.NotFound("groomer not found")
}

func (s *stubGroomers) Update(context.Context, string, domain.GroomerUpdate) error { return s.err }

func (s *stubGroomers) Read(context.Context, domain.GroomerFilter) ([]domain.Groomer, error) {
	return s.created, s.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notificationsdomain.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg notificationsdomain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func validGroomer() domain.Groomer {
	return domain.Groomer{
		Name:         "Acme",
		PictureURL:   "https://img.example.com/acme.png",
		Capacity:     5,
		Address:      "1 Main St",
		ContactNo:    "+6590000000",
		Email:        "acme@example.com",
		AcceptedPets: []grooming.PetType{grooming.PetCats},
		Basic:        30,
		Premium:      45,
		Luxury:       60,
	}
}

func TestCreateUser_NotifiesAfterSuccess(t *testing.T) {
	users := &stubUsers{}
	notifier := &recordingNotifier{}
	svc := NewService(users, &stubGroomers{}, notifier)

	err := svc.CreateUser(context.Background(), domain.User{Name: " alice ", ContactNo: "+6591234567", Email: "a@example.com"})
	require.NoError(t, err)

	require.Equal(t, "alice", users.created[0].Name)
	require.Equal(t, []notificationsdomain.Message{{RecipientType: notificationsdomain.RecipientUser, ContactNo: "+6591234567"}}, notifier.messages)
}

func TestCreateUser_FailureSendsNothing(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(&stubUsers{err: fault.Rejected("user already exists").WithStatus(http.StatusBadRequest)}, &stubGroomers{}, notifier)

	err := svc.CreateUser(context.Background(), domain.User{Name: "alice", ContactNo: "1", Email: "a@example.com"})
	require.True(t, fault.IsKind(err, fault.KindRejected))
	require.Empty(t, notifier.messages)

	err = svc.CreateUser(context.Background(), domain.User{Name: "alice"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyContact)
}

func TestCreateGroomer_NotifiesGroomer(t *testing.T) {
	groomers := &stubGroomers{}
	notifier := &recordingNotifier{}
	svc := NewService(&stubUsers{}, groomers, notifier)

	body, err := svc.CreateGroomer(context.Background(), validGroomer())
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Acme"}`, string(body))
	require.Equal(t, notificationsdomain.RecipientGroomer, notifier.messages[0].RecipientType)

	bad := validGroomer()
	bad.AcceptedPets = []grooming.PetType{"Dragons"}
	_, err = svc.CreateGroomer(context.Background(), bad)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Len(t, notifier.messages, 1)
}

func TestAccepts_ValidatesPetTypesLocally(t *testing.T) {
	groomers := &stubGroomers{quote: grooming.PriceQuote{grooming.TierBasic: {Rate: 30}}}
	svc := NewService(&stubUsers{}, groomers, nil)

	quote, err := svc.Accepts(context.Background(), "Acme", []grooming.PetType{grooming.PetCats})
	require.NoError(t, err)
	require.Equal(t, 30.0, quote[grooming.TierBasic].Rate)

	_, err = svc.Accepts(context.Background(), "Acme", []grooming.PetType{"Unicorns"})
	require.True(t, IsInvalidInput(err))

	_, err = svc.Accepts(context.Background(), "Acme", nil)
	require.True(t, IsInvalidInput(err))
}

func TestUpdates_RequireChanges(t *testing.T) {
	svc := NewService(&stubUsers{}, &stubGroomers{}, nil)

	require.ErrorIs(t, svc.UpdateUser(context.Background(), "alice", domain.UserUpdate{}), domain.ErrEmptyUpdate)
	require.ErrorIs(t, svc.UpdateGroomer(context.Background(), "Acme", domain.GroomerUpdate{}), domain.ErrEmptyUpdate)

	capacity := 0
	require.ErrorIs(t, svc.UpdateGroomer(context.Background(), "Acme", domain.GroomerUpdate{Capacity: &capacity}), domain.ErrCapacity)

	email := "new@example.com"
	require.NoError(t, svc.UpdateUser(context.Background(), "alice", domain.UserUpdate{Email: &email}))
}

func TestGetUser_PropagatesNotFound(t *testing.T) {
	svc := NewService(&stubUsers{}, &stubGroomers{}, nil)

	_, err := svc.GetUser(context.Background(), "ghost")
	require.True(t, fault.IsKind(err, fault.KindNotFound))

	_, err = svc.GetUser(context.Background(), " ")
	require.True(t, IsInvalidInput(err))
}
