package grooming

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// TierPrice is what a groomer charges per day for one tier. PriceID is the payment
// provider's price identifier when the groomer has one.
type TierPrice struct {
	PriceID string  `json:"priceId,omitempty"`
	Rate    float64 `json:"rate"`
}

// UnmarshalJSON accepts either a bare number (the rate) or {priceId, rate}.
func (p *TierPrice) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = TierPrice{}
		return nil
	}
	if trimmed[0] != '{' {
		var rate float64
		if err := json.Unmarshal(trimmed, &rate); err != nil {
			return fmt.Errorf("tier price: %w", err)
		}
		*p = TierPrice{Rate: rate}
		return nil
	}
	type plain TierPrice
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return fmt.Errorf("tier price: %w", err)
	}
	decoded.PriceID = strings.TrimSpace(decoded.PriceID)
	*p = TierPrice(decoded)
	return nil
}

// HasRate reports whether the per-day rate is a positive finite amount.
func (p TierPrice) HasRate() bool {
	return p.Rate > 0 && !math.IsInf(p.Rate, 0) && !math.IsNaN(p.Rate)
}

// Usable reports whether the price can be charged, through a provider price or a rate.
func (p TierPrice) Usable() bool {
	return p.PriceID != "" || p.HasRate()
}

// MinorUnits converts the per-day rate to the smallest currency unit.
func (p TierPrice) MinorUnits() int64 {
	return int64(math.Round(p.Rate * 100))
}

// PriceQuote maps each tier a groomer offers to its price.
type PriceQuote map[PriceTier]TierPrice

// Lookup returns the price for tier when it carries a price id, a rate, or both.
func (q PriceQuote) Lookup(tier PriceTier) (TierPrice, bool) {
	price, ok := q[tier]
	if !ok || !price.Usable() {
		return TierPrice{}, false
	}
	return price, true
}
