package payments

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	checkoutdomain "github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	checkoutports "github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

var _ checkoutports.Payments = (*SandboxGateway)(nil)

// SandboxGateway is an in-memory payment provider for local runs without a Stripe key.
type SandboxGateway struct {
	mu         sync.Mutex
	successURL string
	sessions   map[string]*sandboxSession
	byKey      map[string]string
}

type sandboxSession struct {
	charge   checkoutdomain.ChargeRequest
	refunded bool
}

// NewSandboxGateway builds an empty sandbox; checkout URLs point at successURL.
func NewSandboxGateway(successURL string) *SandboxGateway {
	return &SandboxGateway{
		successURL: successURL,
		sessions:   map[string]*sandboxSession{},
		byKey:      map[string]string{},
	}
}

// CreateSession records a session. The same reference yields the same session.
func (g *SandboxGateway) CreateSession(_ context.Context, charge checkoutdomain.ChargeRequest) (*checkoutdomain.PaymentSession, error) {
	if charge.Days < 1 {
		return nil, fault.InvalidRange("stay must be at least one day")
	}
	if !charge.Price.Usable() {
		return nil, fault.InvalidTier(fmt.Sprintf("no price for tier %s", charge.Tier))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.byKey[charge.Reference]; ok && charge.Reference != "" {
		return g.session(id), nil
	}
	id := "cs_sandbox_" + uuid.NewString()
	g.sessions[id] = &sandboxSession{charge: charge}
	if charge.Reference != "" {
		g.byKey[charge.Reference] = id
	}
	return g.session(id), nil
}

// Refund marks the session refunded; refunding twice is a no-op.
func (g *SandboxGateway) Refund(_ context.Context, transactionID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[transactionID]
	if !ok {
		return fault.PaymentError(fmt.Sprintf("no such checkout session: %s", transactionID))
	}
	session.refunded = true
	return nil
}

// refunded reports whether a session has been refunded.
func (g *SandboxGateway) refunded(transactionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[transactionID]
	return ok && session.refunded
}

func (g *SandboxGateway) session(id string) *checkoutdomain.PaymentSession {
	target := g.successURL
	if parsed, err := url.Parse(g.successURL); err == nil {
		query := parsed.Query()
		query.Set("session_id", id)
		parsed.RawQuery = query.Encode()
		target = parsed.String()
	}
	return &checkoutdomain.PaymentSession{ID: id, URL: target}
}
