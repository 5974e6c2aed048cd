package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

func TestToCheckoutRequest(t *testing.T) {
	req, err := ToCheckoutRequest(Checkout{
		GroomerName: " Acme ",
		Pets:        []Pet{{PetType: "Cats", Name: "Tom", Age: 2}},
		StartTime:   "2024-01-01T00:00:00Z",
		EndTime:     "2024-01-03T00:00:00Z",
		UserName:    "alice",
		PriceTier:   "Basic",
	}, " key-1 ")
	require.NoError(t, err)

	require.Equal(t, "Acme", req.GroomerName)
	require.Equal(t, grooming.TierBasic, req.Tier)
	require.Equal(t, "key-1", req.IdempotencyKey)
	require.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), req.End.UTC())
	require.Equal(t, grooming.GenderUnspecified, req.Pets[0].Gender)
	require.NoError(t, req.Validate())
}

func TestToCheckoutRequest_Rejects(t *testing.T) {
	valid := Checkout{
		GroomerName: "Acme",
		Pets:        []Pet{{PetType: "Cats", Name: "Tom"}},
		StartTime:   "2024-01-01T00:00:00Z",
		EndTime:     "2024-01-03T00:00:00Z",
		UserName:    "alice",
		PriceTier:   "basic",
	}

	missing := valid
	missing.StartTime = ""
	_, err := ToCheckoutRequest(missing, "")
	require.ErrorIs(t, err, errMissingStart)

	garbled := valid
	garbled.EndTime = "tomorrow"
	_, err = ToCheckoutRequest(garbled, "")
	require.Error(t, err)

	unknownPet := valid
	unknownPet.Pets = []Pet{{PetType: "Dragons", Name: "Smaug"}}
	_, err = ToCheckoutRequest(unknownPet, "")
	require.ErrorIs(t, err, grooming.ErrUnknownPetType)

	badTier := valid
	badTier.PriceTier = "platinum"
	_, err = ToCheckoutRequest(badTier, "")
	require.Error(t, err)
}
