package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

type fakeGroomers struct {
	quote grooming.PriceQuote
	err   error
	delay time.Duration
	calls int
}

func (f *fakeGroomers) Accepts(ctx context.Context, _ string, _ []grooming.PetType) (grooming.PriceQuote, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.quote, f.err
}

type fakeAppointments struct {
	mu          sync.Mutex
	days        domain.StayDuration
	createErr   error
	createDelay time.Duration
	txErr       error
	deleteErr   error
	created     []domain.Appointment
	deleted     []string
	tx          map[string]string
	calls       []string
	durations   int
}

func (f *fakeAppointments) Duration(context.Context, time.Time, time.Time) (domain.StayDuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations++
	f.calls = append(f.calls, "duration")
	return f.days, nil
}

func (f *fakeAppointments) Create(ctx context.Context, appt domain.Appointment) (string, error) {
	if f.createDelay > 0 {
		select {
		case <-time.After(f.createDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, appt)
	id := fmt.Sprintf("appt-%d", len(f.created))
	if f.tx == nil {
		f.tx = map[string]string{}
	}
	f.tx[id] = appt.TransactionID
	return id, nil
}

func (f *fakeAppointments) Transaction(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "transaction")
	if f.txErr != nil {
		return "", f.txErr
	}
	tx, ok := f.tx[id]
	if !ok {
		return "", fault.NotFound("appointment not found")
	}
	return tx, nil
}

func (f *fakeAppointments) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePayments struct {
	mu        sync.Mutex
	sessions  int
	createErr error
	refundErr error
	refunds   []string
	keys      []string
}

func (f *fakePayments) CreateSession(_ context.Context, charge domain.ChargeRequest) (*domain.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.sessions++
	id := fmt.Sprintf("cs_test_%d", f.sessions)
	return &domain.PaymentSession{ID: id, URL: "https://pay.example.com/" + id}, nil
}

func (f *fakePayments) Refund(_ context.Context, transactionID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, transactionID)
	f.keys = append(f.keys, key)
	return f.refundErr
}

type fixture struct {
	groomers     *fakeGroomers
	appointments *fakeAppointments
	payments     *fakePayments
	saga         *Saga
}

func newFixture(opts ...SagaOption) *fixture {
	f := &fixture{
		groomers: &fakeGroomers{quote: grooming.PriceQuote{
			grooming.TierBasic:   {Rate: 30},
			grooming.TierPremium: {Rate: 45},
		}},
		appointments: &fakeAppointments{days: 2},
		payments:     &fakePayments{},
	}
	steps, err := NewSteps(f.groomers, f.appointments, f.payments)
	if err != nil {
		panic(err)
	}
	f.saga = NewSaga(steps, opts...)
	return f
}

// sagaRunner runs the in-process saga as the orchestrator.
type sagaRunner struct {
	saga *Saga
	err  error
}

func (r sagaRunner) RunCheckout(ctx context.Context, cmd domain.CheckoutCommand) (*domain.CheckoutOutcome, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.saga.Checkout(ctx, cmd), nil
}

func (r sagaRunner) RunRefund(ctx context.Context, cmd domain.RefundCommand) (*domain.RefundOutcome, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.saga.Refund(ctx, cmd), nil
}

var _ ports.WorkflowOrchestrator = sagaRunner{}

type fakeIdempotency struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
}

func (f *fakeIdempotency) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeIdempotency) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records == nil {
		f.records = map[string]ports.IdempotencyRecord{}
	}
	if existing, ok := f.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}
	f.records[record.Key] = record
	return &record, nil
}

type fakeJournal struct {
	mu      sync.Mutex
	records map[string]domain.SagaRecord
	err     error
}

func (f *fakeJournal) Start(_ context.Context, record domain.SagaRecord) error {
	return f.put(record)
}

func (f *fakeJournal) Finish(_ context.Context, record domain.SagaRecord) error {
	return f.put(record)
}

func (f *fakeJournal) put(record domain.SagaRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.records == nil {
		f.records = map[string]domain.SagaRecord{}
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeJournal) Get(_ context.Context, id string) (*domain.SagaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, ports.ErrSagaNotFound
	}
	return &rec, nil
}

func (f *fakeJournal) List(_ context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.SagaRecord{}
	for _, rec := range f.records {
		if outcome == "" || rec.Outcome == outcome {
			rec := rec
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (f *fakeJournal) Purge(context.Context, domain.Outcome, time.Time) (int64, error) {
	return 0, nil
}

func validRequest() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		GroomerName: "Acme",
		UserName:    "alice",
		Pets:        []grooming.Pet{{Type: grooming.PetDogs, Name: "Rex", Age: 3}},
		Start:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Tier:        grooming.TierBasic,
	}
}

// racedIdempotency behaves as if another process saved the key while the saga ran: Get
// never finds it and Save returns the other process's record.
type racedIdempotency struct {
	winner ports.IdempotencyRecord
}

func (r *racedIdempotency) Get(context.Context, string) (*ports.IdempotencyRecord, error) {
	return nil, nil
}

func (r *racedIdempotency) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	winner := r.winner
	if winner.RequestHash != record.RequestHash {
		return &winner, ports.ErrIdempotencyConflict
	}
	return &winner, nil
}
