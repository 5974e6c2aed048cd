// Package grooming holds the vocabulary shared by every bounded context: pet types,
// genders, price tiers and appointment statuses.
package grooming

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPetType   = errors.New("unknown pet type")
	ErrUnknownGender    = errors.New("unknown pet gender")
	ErrUnknownPriceTier = errors.New("unknown price tier")
	ErrUnknownStatus    = errors.New("unknown appointment status")
	ErrStatusFlow       = errors.New("incorrect status flow")
)

// PetType is one of the animal kinds groomers can accept.
type PetType string

const (
	PetBirds       PetType = "Birds"
	PetHamsters    PetType = "Hamsters"
	PetCats        PetType = "Cats"
	PetDogs        PetType = "Dogs"
	PetRabbits     PetType = "Rabbits"
	PetGuineaPigs  PetType = "GuineaPigs"
	PetChinchillas PetType = "Chinchillas"
	PetMice        PetType = "Mice"
	PetFishes      PetType = "Fishes"
)

var petTypes = []PetType{PetBirds, PetHamsters, PetCats, PetDogs, PetRabbits, PetGuineaPigs, PetChinchillas, PetMice, PetFishes}

// ParsePetType validates a pet type name (case-sensitive, as the collaborators store it).
func ParsePetType(raw string) (PetType, error) {
	candidate := PetType(strings.TrimSpace(raw))
	for _, known := range petTypes {
		if candidate == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPetType, raw)
}

// Gender of a pet.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderUnspecified Gender = "unspecified"
)

// ParseGender validates a gender; empty means unspecified.
func ParseGender(raw string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	case GenderUnspecified, "":
		return GenderUnspecified, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGender, raw)
}

// PriceTier is a service level.
type PriceTier string

const (
	TierBasic   PriceTier = "basic"
	TierPremium PriceTier = "premium"
	TierLuxury  PriceTier = "luxury"
)

// ParsePriceTier validates a tier name.
func ParsePriceTier(raw string) (PriceTier, error) {
	switch PriceTier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierBasic:
		return TierBasic, nil
	case TierPremium:
		return TierPremium, nil
	case TierLuxury:
		return TierLuxury, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriceTier, raw)
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusAwaiting AppointmentStatus = "awaiting"
	StatusStaying  AppointmentStatus = "staying"
	StatusLeft     AppointmentStatus = "left"
)

// ParseStatus validates a status name.
func ParseStatus(raw string) (AppointmentStatus, error) {
	switch AppointmentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAwaiting:
		return StatusAwaiting, nil
	case StatusStaying:
		return StatusStaying, nil
	case StatusLeft:
		return StatusLeft, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// CanTransition reports whether an appointment may move from one status to another.
// Going backwards (staying->awaiting, left->staying) is refused.
func CanTransition(from, to AppointmentStatus) error {
	if (from == StatusStaying && to == StatusAwaiting) || (from == StatusLeft && to == StatusStaying) {
		return ErrStatusFlow
	}
	return nil
}

var ErrPetAge = errors.New("pet age must be greater or equal to zero")

// Pet describes one animal booked into a stay.
type Pet struct {
	Type        PetType `json:"petType"`
	Name        string  `json:"name"`
	Gender      Gender  `json:"gender"`
	Age         int     `json:"age"`
	MedicalInfo string  `json:"medicalInfo"`
}

// Validate checks the pet's fields. Only the type is required; a stay may book an unnamed pet.
func (p Pet) Validate() error {
	if _, err := ParsePetType(string(p.Type)); err != nil {
		return err
	}
	if _, err := ParseGender(string(p.Gender)); err != nil {
		return err
	}
	if p.Age < 0 {
		return ErrPetAge
	}
	return nil
}
