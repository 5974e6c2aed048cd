// Package fault classifies failures raised while talking to downstream collaborators
// so that workflows and the API surface can react to them uniformly.
package fault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind names a failure class.
type Kind string

const (
	KindNotFound         Kind = "NotFound"
	KindRejected         Kind = "Rejected"
	KindInvalidRange     Kind = "InvalidRange"
	KindInvalidTier      Kind = "InvalidTier"
	KindPaymentError     Kind = "PaymentError"
	KindPersistenceError Kind = "PersistenceError"
	KindTimeout          Kind = "Timeout"
	KindConflict         Kind = "Conflict"
	KindInternalError    Kind = "InternalError"
)

// Compensation outcomes attached to a failure after the workflow tried to undo earlier steps.
const (
	CompensationApplied = "applied"
	CompensationFailed  = "failed"
)

// Error is a classified failure. Status carries the downstream status code when one was
// observed; zero means "use the default for Kind".
type Error struct {
	Kind         Kind
	Status       int
	Message      string
	Compensation string
	Err          error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, fault.NotFound("")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HTTPStatus returns the status code the API surface should answer with.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	if e.Status >= http.StatusBadRequest {
		return e.Status
	}
	return DefaultStatus(e.Kind)
}

// Detail is the caller-visible message.
func (e *Error) Detail() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// WithStatus returns a copy carrying the observed downstream status.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

// WithCompensation returns a copy annotated with the compensation outcome.
func (e *Error) WithCompensation(outcome string) *Error {
	clone := *e
	clone.Compensation = outcome
	return &clone
}

// DefaultStatus maps a kind to the status used when no downstream status was observed.
func DefaultStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindRejected, KindInvalidRange, KindInvalidTier:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error         { return New(KindNotFound, message) }
func Rejected(message string) *Error         { return New(KindRejected, message) }
func InvalidRange(message string) *Error     { return New(KindInvalidRange, message) }
func InvalidTier(message string) *Error      { return New(KindInvalidTier, message) }
func PaymentError(message string) *Error     { return New(KindPaymentError, message) }
func PersistenceError(message string) *Error { return New(KindPersistenceError, message) }
func Timeout(message string) *Error          { return New(KindTimeout, message) }
func Conflict(message string) *Error         { return New(KindConflict, message) }
func Internal(message string) *Error         { return New(KindInternalError, message) }

// As extracts the classified failure from err.
func As(err error) (*Error, bool) {
	var f *Error
	if errors.As(err, &f) && f != nil {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind of err. Context deadline errors classify as Timeout;
// anything unclassified is InternalError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if f, ok := As(err); ok {
		return f.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternalError
}

// Classify turns any error into a *Error, preserving an existing classification.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if f, ok := As(err); ok {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTimeout, "operation timed out", err)
	}
	return Wrap(KindInternalError, err.Error(), err)
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
