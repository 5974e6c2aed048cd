package mapper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

// IdempotencyKeyHeader carries the optional client key for POST /checkout.
const IdempotencyKeyHeader = "Idempotency-Key"

var (
	errMissingStart = errors.New("startTime is required")
	errMissingEnd   = errors.New("endTime is required")
)

// Pet is the HTTP representation of a pet booked into a stay.
type Pet struct {
	PetType     string `json:"petType"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	Age         int    `json:"age"`
	MedicalInfo string `json:"medicalInfo,omitempty"`
}

// Checkout is the inbound POST /checkout payload. Times are RFC 3339 strings.
type Checkout struct {
	GroomerName string `json:"groomerName"`
	Pets        []Pet  `json:"pets"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	UserName    string `json:"userName"`
	PriceTier   string `json:"priceTier"`
}

// CheckoutResponse is the body returned after a successful checkout.
type CheckoutResponse struct {
	CheckoutURL   string  `json:"checkoutUrl"`
	AppointmentID string  `json:"appointmentId"`
	TotalPrice    float64 `json:"totalPrice"`
	DayLength     int     `json:"dayLength"`
}

// Refund is the inbound POST /refund payload.
type Refund struct {
	AppointmentID string `json:"appointmentId"`
}

// RefundResponse is the body returned after a successful refund.
type RefundResponse struct {
	AppointmentID string `json:"appointmentId"`
	TransactionID string `json:"transactionId"`
}

// Saga is the HTTP view of a journal entry.
type Saga struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	GroomerName    string     `json:"groomerName,omitempty"`
	UserName       string     `json:"userName,omitempty"`
	AppointmentID  string     `json:"appointmentId,omitempty"`
	TransactionID  string     `json:"transactionId,omitempty"`
	Total          float64    `json:"total,omitempty"`
	Steps          []string   `json:"steps"`
	Outcome        string     `json:"outcome"`
	FailureKind    string     `json:"failureKind,omitempty"`
	FailureMessage string     `json:"failureMessage,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

// ToCheckoutRequest parses the transport payload into the domain request. Pet type, gender and
// tier spellings are normalised; everything else is left to domain validation.
func ToCheckoutRequest(input Checkout, idempotencyKey string) (domain.CheckoutRequest, error) {
	start, err := parseTime(input.StartTime, errMissingStart)
	if err != nil {
		return domain.CheckoutRequest{}, err
	}
	end, err := parseTime(input.EndTime, errMissingEnd)
	if err != nil {
		return domain.CheckoutRequest{}, err
	}
	tier, err := grooming.ParsePriceTier(input.PriceTier)
	if err != nil {
		return domain.CheckoutRequest{}, err
	}
	pets, err := ToDomainPets(input.Pets)
	if err != nil {
		return domain.CheckoutRequest{}, err
	}
	return domain.CheckoutRequest{
		GroomerName:    strings.TrimSpace(input.GroomerName),
		Pets:           pets,
		Start:          start,
		End:            end,
		UserName:       strings.TrimSpace(input.UserName),
		Tier:           tier,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}, nil
}

// ToDomainPets maps transport pets, defaulting the gender to unspecified.
func ToDomainPets(list []Pet) ([]grooming.Pet, error) {
	pets := make([]grooming.Pet, 0, len(list))
	for i, p := range list {
		petType, err := grooming.ParsePetType(p.PetType)
		if err != nil {
			return nil, fmt.Errorf("pets[%d]: %w", i, err)
		}
		gender, err := grooming.ParseGender(p.Gender)
		if err != nil {
			return nil, fmt.Errorf("pets[%d]: %w", i, err)
		}
		pets = append(pets, grooming.Pet{
			Type:        petType,
			Name:        p.Name,
			Gender:      gender,
			Age:         p.Age,
			MedicalInfo: p.MedicalInfo,
		})
	}
	return pets, nil
}

// FromCheckoutResult maps the checkout result into the response body.
func FromCheckoutResult(result *domain.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		CheckoutURL:   result.CheckoutURL,
		AppointmentID: result.AppointmentID,
		TotalPrice:    result.TotalPrice,
		DayLength:     result.DayLength,
	}
}

// ToRefundRequest maps the refund payload.
func ToRefundRequest(input Refund) domain.RefundRequest {
	return domain.RefundRequest{AppointmentID: strings.TrimSpace(input.AppointmentID)}
}

// FromRefundResult maps the refund result into the response body.
func FromRefundResult(result *domain.RefundResult) RefundResponse {
	return RefundResponse{AppointmentID: result.AppointmentID, TransactionID: result.TransactionID}
}

// FromSagaRecord maps a journal entry.
func FromSagaRecord(record *domain.SagaRecord) Saga {
	steps := append([]string{}, record.Steps...)
	var finished *time.Time
	if record.FinishedAt != nil {
		copy := *record.FinishedAt
		finished = &copy
	}
	return Saga{
		ID:             record.ID,
		Kind:           string(record.Kind),
		GroomerName:    record.GroomerName,
		UserName:       record.UserName,
		AppointmentID:  record.AppointmentID,
		TransactionID:  record.TransactionID,
		Total:          record.Total,
		Steps:          steps,
		Outcome:        string(record.Outcome),
		FailureKind:    record.FailureKind,
		FailureMessage: record.FailureMessage,
		StartedAt:      record.StartedAt,
		FinishedAt:     finished,
	}
}

// FromSagaRecordList maps a slice of journal entries.
func FromSagaRecordList(list []*domain.SagaRecord) []Saga {
	resp := make([]Saga, 0, len(list))
	for _, record := range list {
		resp = append(resp, FromSagaRecord(record))
	}
	return resp
}

func parseTime(raw string, missing error) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, missing
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return t, nil
}
