package groomingserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	accountsapp "github.com/tropicbliss/ESD-Project/internal/domains/accounts/application"
	accountsdomain "github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	bookingsapp "github.com/tropicbliss/ESD-Project/internal/domains/bookings/application"
	bookingsdomain "github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
	checkoutapp "github.com/tropicbliss/ESD-Project/internal/domains/checkout/application"
	checkoutdomain "github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

type stubCheckout struct {
	lastKey string
	err     error
}

func (s *stubCheckout) Checkout(_ context.Context, req checkoutdomain.CheckoutRequest) (*checkoutdomain.CheckoutResult, error) {
	s.lastKey = req.IdempotencyKey
	if s.err != nil {
		return nil, s.err
	}
	if err := checkoutapp.ValidateCheckout(req); err != nil {
		return nil, err
	}
	return &checkoutdomain.CheckoutResult{CheckoutURL: "https://pay.example.com/cs_1", AppointmentID: "appt-1", TransactionID: "cs_1", TotalPrice: 60, DayLength: 2}, nil
}

func (s *stubCheckout) Refund(_ context.Context, req checkoutdomain.RefundRequest) (*checkoutdomain.RefundResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &checkoutdomain.RefundResult{AppointmentID: req.AppointmentID, TransactionID: "tx_123"}, nil
}

func (s *stubCheckout) GetSaga(_ context.Context, id string) (*checkoutdomain.SagaRecord, error) {
	return nil, fault.NotFound("saga not found")
}

func (s *stubCheckout) ListSagas(_ context.Context, outcome checkoutdomain.Outcome) ([]*checkoutdomain.SagaRecord, error) {
	if _, err := checkoutdomain.ParseOutcome(string(outcome)); outcome != "" && err != nil {
		return nil, err
	}
	return nil, nil
}

type stubUsers struct{}

func (stubUsers) Create(context.Context, accountsdomain.User) error { return nil }
func (stubUsers) Get(context.Context, string) (*accountsdomain.User, error) {
	return nil, fault.NotFound("user not found")
}
func (stubUsers) Update(context.Context, string, accountsdomain.UserUpdate) error { return nil }

type stubGroomers struct{}

func (stubGroomers) Accepts(context.Context, string, []grooming.PetType) (grooming.PriceQuote, error) {
	return nil, fault.Rejected("pet type not accepted").WithStatus(http.StatusBadRequest)
}
func (stubGroomers) Create(context.Context, accountsdomain.Groomer) (json.RawMessage, error) {
	return json.RawMessage(`{"name":"Acme"}`), nil
}
func (stubGroomers) SearchByKeyword(context.Context, string) ([]accountsdomain.Groomer, error) {
	return nil, nil
}
func (stubGroomers) SearchByName(context.Context, string) (*accountsdomain.Groomer, error) {
	return &accountsdomain.Groomer{Name: "Acme"}, nil
}
func (stubGroomers) Update(context.Context, string, accountsdomain.GroomerUpdate) error { return nil }
func (stubGroomers) Read(context.Context, accountsdomain.GroomerFilter) ([]accountsdomain.Groomer, error) {
	return []accountsdomain.Groomer{{Name: "Acme"}}, nil
}

type stubBook struct{ changes int }

func (s *stubBook) ChangeStatus(context.Context, bookingsdomain.StatusChange) error {
	s.changes++
	return nil
}
func (s *stubBook) ForUser(context.Context, string) ([]bookingsdomain.AppointmentSummary, error) {
	return nil, nil
}
func (s *stubBook) Arriving(context.Context, string) ([]bookingsdomain.CustomerAppointment, error) {
	return nil, nil
}
func (s *stubBook) Staying(context.Context, string) ([]bookingsdomain.CustomerAppointment, error) {
	return nil, nil
}
func (s *stubBook) Capacity(context.Context, string) ([]bookingsdomain.FutureCapacity, error) {
	return []bookingsdomain.FutureCapacity{{Date: "2024-06-01", Capacity: 2}}, nil
}

type stubComments struct{}

func (stubComments) ForGroomer(context.Context, string) ([]bookingsdomain.Comment, error) {
	return nil, fault.New(fault.KindNotFound, "no comments for groomer")
}

type harness struct {
	router   *gin.Engine
	checkout *stubCheckout
	book     *stubBook
}

func newHarness() *harness {
	gin.SetMode(gin.TestMode)
	h := &harness{checkout: &stubCheckout{}, book: &stubBook{}}
	accounts := accountsapp.NewService(stubUsers{}, stubGroomers{}, nil)
	bookings := bookingsapp.NewService(h.book, stubComments{})
	h.router = NewRouter(ApiHandleFunctions{
		CheckoutAPI: NewCheckoutAPI(h.checkout),
		UserAPI:     NewUserAPI(accounts),
		GroomerAPI:  NewGroomerAPI(accounts),
		BookingAPI:  NewBookingAPI(bookings),
	})
	return h
}

func (h *harness) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		payload, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type problemBody struct {
	Detail     string         `json:"detail"`
	Status     int            `json:"status"`
	Extensions map[string]any `json:"extensions"`
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problemBody {
	t.Helper()
	var p problemBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotEmpty(t, p.Detail)
	return p
}

func checkoutBody() map[string]any {
	return map[string]any{
		"groomerName": "Acme",
		"pets":        []map[string]any{{"petType": "Cats", "name": "Tom", "age": 2}},
		"startTime":   "2024-01-01T00:00:00Z",
		"endTime":     "2024-01-03T00:00:00Z",
		"userName":    "alice",
		"priceTier":   "basic",
	}
}

func TestCheckout_ReturnsBody(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodPost, "/checkout", checkoutBody(), "Idempotency-Key", "key-1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"checkoutUrl":"https://pay.example.com/cs_1","appointmentId":"appt-1","totalPrice":60,"dayLength":2}`, rec.Body.String())
	require.Equal(t, "key-1", h.checkout.lastKey)
}

func TestCheckout_RedirectsWhenAsked(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodPost, "/checkout?redirect=true", checkoutBody())

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "https://pay.example.com/cs_1", rec.Header().Get("Location"))
}

func TestCheckout_InvalidRangeIsBadRequest(t *testing.T) {
	h := newHarness()
	body := checkoutBody()
	body["endTime"] = "2023-12-31T00:00:00Z"

	rec := h.do(http.MethodPost, "/checkout", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	require.Equal(t, "the end date is earlier than the start date", p.Detail)
	require.Equal(t, "InvalidRange", p.Extensions["kind"])
}

func TestCheckout_MalformedPayload(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodPost, "/checkout", "{")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeProblem(t, rec)

	body := checkoutBody()
	body["priceTier"] = "gold"
	rec = h.do(http.MethodPost, "/checkout", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_CompensatedFailureKeepsStatusAndReportsCompensation(t *testing.T) {
	h := newHarness()
	h.checkout.err = fault.PersistenceError("appointment insert failed").WithStatus(http.StatusServiceUnavailable).WithCompensation(fault.CompensationApplied)

	rec := h.do(http.MethodPost, "/checkout", checkoutBody())

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	p := decodeProblem(t, rec)
	require.Equal(t, "appointment insert failed", p.Detail)
	require.Equal(t, fault.CompensationApplied, p.Extensions["compensation"])
}

func TestRefund(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodPost, "/refund", map[string]string{"appointmentId": "appt-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"appointmentId":"appt-1","transactionId":"tx_123"}`, rec.Body.String())
}

func TestSagas(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodGet, "/sagas/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/sagas?outcome=compensation_failed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestUsersAndGroomers(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodPost, "/user/create", map[string]string{"name": "alice", "contactNo": "+6591234567", "email": "a@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(http.MethodPost, "/user/create", map[string]string{"name": "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeProblem(t, rec)

	rec = h.do(http.MethodGet, "/user/read/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "user not found", decodeProblem(t, rec).Detail)

	rec = h.do(http.MethodPost, "/groomer/accepts/Acme", map[string]any{"petTypes": []string{"Cats"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "pet type not accepted", decodeProblem(t, rec).Detail)

	rec = h.do(http.MethodPost, "/groomer/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBookings(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodPost, "/appointments/status/appt-1", map[string]string{"status": "teleported"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, h.book.changes)

	rec = h.do(http.MethodPost, "/appointments/status/appt-1", map[string]string{"status": "left"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, h.book.changes)

	rec = h.do(http.MethodGet, "/capacity/check/Acme", nil)
	require.JSONEq(t, `[{"date":"2024-06-01","capacity":2}]`, rec.Body.String())

	rec = h.do(http.MethodGet, "/appointments/user/alice", nil)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = h.do(http.MethodGet, "/comments/read/Acme", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
