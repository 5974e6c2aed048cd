package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	checkoutdomain "github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

type stripeStub struct {
	mu       sync.Mutex
	requests []string
	forms    []map[string]string
	session  string
	refund   int
}

func (s *stripeStub) handler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.forms = append(s.forms, form)
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/cs_test_1","status":"open"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_test_1":
		_, _ = w.Write([]byte(s.session))
	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions/cs_test_1/expire":
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"expired"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/v1/refunds":
		if s.refund != 0 {
			w.WriteHeader(s.refund)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"charge is disputed"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","status":"succeeded"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"unknown route"}}`))
	}
}

func newStubGateway(t *testing.T, stub *stripeStub) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(srv.Close)
	pool := httpclient.New()
	t.Cleanup(pool.Close)
	gateway, err := NewStripeGateway("sk_test_123", Settings{
		SuccessURL: "https://esd.example.com/success",
		CancelURL:  "https://esd.example.com/cancel",
		Currency:   "SGD",
	}, pool, WithAPIURL(srv.URL))
	require.NoError(t, err)
	return gateway
}

func TestCreateSession_InlinePriceUsesMinorUnitsAndDays(t *testing.T) {
	stub := &stripeStub{}
	gateway := newStubGateway(t, stub)

	session, err := gateway.CreateSession(context.Background(), checkoutdomain.ChargeRequest{
		Reference:   "saga-1",
		GroomerName: "Acme",
		Tier:        grooming.TierBasic,
		Price:       grooming.TierPrice{Rate: 30},
		Days:        2,
		Total:       60,
	})
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", session.TransactionID())
	require.Equal(t, "https://checkout.stripe.com/c/cs_test_1", session.URL)

	form := stub.forms[0]
	require.Equal(t, "payment", form["mode"])
	require.Equal(t, "2", form["line_items[0][quantity]"])
	require.Equal(t, "3000", form["line_items[0][price_data][unit_amount]"])
	require.Equal(t, "sgd", form["line_items[0][price_data][currency]"])
	require.Equal(t, "saga-1", form["client_reference_id"])
}

func TestCreateSession_UsesProviderPrice(t *testing.T) {
	stub := &stripeStub{}
	gateway := newStubGateway(t, stub)

	_, err := gateway.CreateSession(context.Background(), checkoutdomain.ChargeRequest{
		Tier:  grooming.TierPremium,
		Price: grooming.TierPrice{PriceID: "price_premium", Rate: 45},
		Days:  3,
	})
	require.NoError(t, err)
	require.Equal(t, "price_premium", stub.forms[0]["line_items[0][price]"])
	require.Equal(t, "3", stub.forms[0]["line_items[0][quantity]"])
}

func TestRefund_PaidSessionRefundsPaymentIntent(t *testing.T) {
	stub := &stripeStub{session: `{"id":"cs_test_1","object":"checkout.session","status":"complete","payment_intent":"pi_9"}`}
	gateway := newStubGateway(t, stub)

	require.NoError(t, gateway.Refund(context.Background(), "cs_test_1", "saga-1"))
	require.Equal(t, []string{"GET /v1/checkout/sessions/cs_test_1", "POST /v1/refunds"}, stub.requests)
	require.Equal(t, "pi_9", stub.forms[1]["payment_intent"])
}

func TestRefund_OpenSessionIsExpired(t *testing.T) {
	stub := &stripeStub{session: `{"id":"cs_test_1","object":"checkout.session","status":"open"}`}
	gateway := newStubGateway(t, stub)

	require.NoError(t, gateway.Refund(context.Background(), "cs_test_1", "saga-1"))
	require.Equal(t, []string{"GET /v1/checkout/sessions/cs_test_1", "POST /v1/checkout/sessions/cs_test_1/expire"}, stub.requests)
}

func TestRefund_ProviderRejectionIsPaymentError(t *testing.T) {
	stub := &stripeStub{refund: http.StatusBadRequest}
	gateway := newStubGateway(t, stub)

	err := gateway.Refund(context.Background(), "pi_9", "")
	f, ok := fault.As(err)
	require.True(t, ok)
	require.Equal(t, fault.KindPaymentError, f.Kind)
	require.Equal(t, "charge is disputed", f.Detail())
}

func TestSandboxGateway(t *testing.T) {
	gateway := NewSandboxGateway("http://localhost:8080/success")
	charge := checkoutdomain.ChargeRequest{Reference: "saga-1", Price: grooming.TierPrice{Rate: 30}, Days: 2}

	first, err := gateway.CreateSession(context.Background(), charge)
	require.NoError(t, err)
	again, err := gateway.CreateSession(context.Background(), charge)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Contains(t, first.URL, "session_id="+first.ID)

	require.NoError(t, gateway.Refund(context.Background(), first.ID, ""))
	require.True(t, gateway.refunded(first.ID))
	require.True(t, fault.IsKind(gateway.Refund(context.Background(), "cs_unknown", ""), fault.KindPaymentError))
}
