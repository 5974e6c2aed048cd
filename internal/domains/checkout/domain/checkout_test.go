package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		GroomerName: "Acme",
		UserName:    "jane",
		Pets:        []grooming.Pet{{Type: grooming.PetCats, Name: "Tom"}, {Type: grooming.PetCats, Name: "Kit"}, {Type: grooming.PetDogs, Name: "Rex"}},
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Tier:        grooming.TierBasic,
	}
}

func TestCheckoutRequest_Validate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	req := validRequest()
	req.End = req.Start
	require.ErrorIs(t, req.Validate(), ErrInvalidRange)

	req = validRequest()
	req.Pets = nil
	require.ErrorIs(t, req.Validate(), ErrNoPets)

	req = validRequest()
	req.Pets[1].Age = -1
	require.ErrorIs(t, req.Validate(), grooming.ErrPetAge)

	req = validRequest()
	req.Pets = []grooming.Pet{{Type: grooming.PetCats}}
	require.NoError(t, req.Validate())

	req = validRequest()
	req.Tier = "gold"
	require.ErrorIs(t, req.Validate(), grooming.ErrUnknownPriceTier)
}

func TestCheckoutRequest_PetTypesAreDistinct(t *testing.T) {
	require.Equal(t, []grooming.PetType{grooming.PetCats, grooming.PetDogs}, validRequest().PetTypes())
}

func TestNewAppointment_DefaultsGenderAndStatus(t *testing.T) {
	appt := NewAppointment(validRequest(), 60, PaymentSession{ID: "cs_1", URL: "https://pay"})
	require.Equal(t, "cs_1", appt.TransactionID)
	require.Equal(t, grooming.StatusAwaiting, appt.Status)
	require.Equal(t, grooming.GenderUnspecified, appt.Pets[0].Gender)
	require.Equal(t, 60.0, appt.TotalPrice)
}

func TestTrailAndOutcome(t *testing.T) {
	var trail Trail
	trail.Add(StepAccepts, nil)
	trail.Add(StepAppointment, fault.PersistenceError("down"))
	trail.Add(StepCompensate, errors.New("boom"))
	require.Equal(t, Trail{"accepts:ok", "appointment:PersistenceError", "compensate:InternalError"}, trail)

	failure := FailureOf(fault.PersistenceError("down").WithStatus(503).WithCompensation(fault.CompensationApplied))
	require.Equal(t, OutcomeCompensated, OutcomeOf(failure))
	require.Equal(t, OutcomeCompleted, OutcomeOf(nil))

	err := failure.Err()
	f, ok := fault.As(err)
	require.True(t, ok)
	require.Equal(t, 503, f.HTTPStatus())
	require.Equal(t, "down", f.Detail())
}
