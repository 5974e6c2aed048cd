package domain

import (
	"errors"
	"time"

	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// SagaKind names the transaction a saga runs.
type SagaKind string

const (
	SagaCheckout SagaKind = "checkout"
	SagaRefund   SagaKind = "refund"
)

// Outcome is how a saga execution ended.
type Outcome string

const (
	OutcomeRunning            Outcome = "running"
	OutcomeCompleted          Outcome = "completed"
	OutcomeFailed             Outcome = "failed"
	OutcomeCompensated        Outcome = "compensated"
	OutcomeCompensationFailed Outcome = "compensation_failed"
)

// ParseOutcome validates an outcome filter.
func ParseOutcome(raw string) (Outcome, error) {
	switch o := Outcome(raw); o {
	case OutcomeRunning, OutcomeCompleted, OutcomeFailed, OutcomeCompensated, OutcomeCompensationFailed:
		return o, nil
	}
	return "", errors.New("unknown saga outcome")
}

// Step names, recorded in the trail as "<step>:<status>".
const (
	StepAccepts     = "accepts"
	StepDuration    = "duration"
	StepPrice       = "price"
	StepPayment     = "payment"
	StepAppointment = "appointment"
	StepCompensate  = "compensate"
	StepLookup      = "lookup"
	StepRefund      = "refund"
	StepDelete      = "delete"
)

// Trail is the ordered step log of one execution.
type Trail []string

// Add appends a step result.
func (t *Trail) Add(step string, err error) {
	status := "ok"
	if err != nil {
		status = string(fault.KindOf(err))
	}
	*t = append(*t, step+":"+status)
}

// Failure is a classified failure in a form that survives serialization.
type Failure struct {
	Kind         fault.Kind `json:"kind"`
	Status       int        `json:"status,omitempty"`
	Message      string     `json:"message"`
	Compensation string     `json:"compensation,omitempty"`
}

// FailureOf captures err as a Failure; nil stays nil.
func FailureOf(err error) *Failure {
	f := fault.Classify(err)
	if f == nil {
		return nil
	}
	return &Failure{Kind: f.Kind, Status: f.Status, Message: f.Detail(), Compensation: f.Compensation}
}

// Err turns the failure back into a *fault.Error.
func (f *Failure) Err() error {
	if f == nil {
		return nil
	}
	return &fault.Error{Kind: f.Kind, Status: f.Status, Message: f.Message, Compensation: f.Compensation}
}

// CheckoutCommand is one checkout execution.
type CheckoutCommand struct {
	SagaID   string          `json:"sagaId"`
	Request  CheckoutRequest `json:"request"`
	Deadline time.Duration   `json:"deadline"`
}

// CheckoutOutcome is what a checkout execution produced.
type CheckoutOutcome struct {
	Result  *CheckoutResult `json:"result,omitempty"`
	Session *PaymentSession `json:"session,omitempty"`
	Trail   Trail           `json:"trail"`
	Failure *Failure        `json:"failure,omitempty"`
}

// Fail records err as the execution's failure.
func (o *CheckoutOutcome) Fail(err error) *CheckoutOutcome {
	o.Failure = FailureOf(err)
	return o
}

// RefundCommand is one refund execution.
type RefundCommand struct {
	SagaID   string        `json:"sagaId"`
	Request  RefundRequest `json:"request"`
	Deadline time.Duration `json:"deadline"`
}

// RefundOutcome is what a refund execution produced.
type RefundOutcome struct {
	Result        *RefundResult `json:"result,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Trail         Trail         `json:"trail"`
	Failure       *Failure      `json:"failure,omitempty"`
}

// Fail records err as the execution's failure.
func (o *RefundOutcome) Fail(err error) *RefundOutcome {
	o.Failure = FailureOf(err)
	return o
}

// SagaRecord is the journal entry of one execution.
type SagaRecord struct {
	ID             string
	Kind           SagaKind
	GroomerName    string
	UserName       string
	AppointmentID  string
	TransactionID  string
	Total          float64
	Steps          []string
	Outcome        Outcome
	FailureKind    string
	FailureMessage string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// OutcomeOf classifies how an execution ended from its failure.
func OutcomeOf(failure *Failure) Outcome {
	switch {
	case failure == nil:
		return OutcomeCompleted
	case failure.Compensation == fault.CompensationApplied:
		return OutcomeCompensated
	case failure.Compensation == fault.CompensationFailed:
		return OutcomeCompensationFailed
	default:
		return OutcomeFailed
	}
}
