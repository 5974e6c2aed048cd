package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
)

type normalizedCheckout struct {
	GroomerName string          `json:"groomerName"`
	UserName    string          `json:"userName"`
	Tier        string          `json:"tier"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Pets        []normalizedPet `json:"pets"`
}

type normalizedPet struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Age         int    `json:"age"`
	MedicalInfo string `json:"medicalInfo"`
}

// FingerprintCheckout builds a deterministic hash of the checkout payload (excluding the
// idempotency key). Pet order does not change the fingerprint.
func FingerprintCheckout(req domain.CheckoutRequest) (string, error) {
	normalized := normalizedCheckout{
		GroomerName: strings.TrimSpace(req.GroomerName),
		UserName:    strings.TrimSpace(req.UserName),
		Tier:        strings.ToLower(string(req.Tier)),
		Start:       req.Start.UTC().Format(time.RFC3339Nano),
		End:         req.End.UTC().Format(time.RFC3339Nano),
		Pets:        make([]normalizedPet, 0, len(req.Pets)),
	}
	for _, p := range req.Pets {
		normalized.Pets = append(normalized.Pets, normalizedPet{
			Type:        string(p.Type),
			Name:        strings.TrimSpace(p.Name),
			Gender:      string(p.Gender),
			Age:         p.Age,
			MedicalInfo: p.MedicalInfo,
		})
	}
	sort.Slice(normalized.Pets, func(i, j int) bool {
		a, b := normalized.Pets[i], normalized.Pets[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Name < b.Name
	})
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
