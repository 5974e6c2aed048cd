// Package errors renders failures as RFC 7807 Problem Details. Every problem carries a
// detail member so clients can rely on the {detail} envelope.
package errors

import (
	"fmt"
	"net/http"

	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail"`
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type,omitempty"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title,omitempty"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithStatus returns a copy answering with a different status code.
func (p ProblemDetail) WithStatus(status int) ProblemDetail {
	p.Status = status
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

const (
	TypeValidation   = "/problems/validation-error"
	TypeNotFound     = "/problems/not-found"
	TypeRejected     = "/problems/rejected"
	TypeInvalidRange = "/problems/invalid-range"
	TypeInvalidTier  = "/problems/invalid-tier"
	TypePayment      = "/problems/payment-error"
	TypePersistence  = "/problems/persistence-error"
	TypeTimeout      = "/problems/timeout"
	TypeConflict     = "/problems/conflict"
	TypeInternal     = "/problems/internal-error"
	TypeBadRequest   = "/problems/bad-request"
)

var (
	ErrNotFound = ProblemDetail{Type: TypeNotFound, Title: "Resource Not Found", Status: http.StatusNotFound}

	ErrValidation = ProblemDetail{Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest}

	ErrBadRequest = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}

	ErrRejected = ProblemDetail{Type: TypeRejected, Title: "Request Rejected", Status: http.StatusBadRequest}

	ErrInvalidRange = ProblemDetail{Type: TypeInvalidRange, Title: "Invalid Date Range", Status: http.StatusBadRequest}

	ErrInvalidTier = ProblemDetail{Type: TypeInvalidTier, Title: "Invalid Price Tier", Status: http.StatusBadRequest}

	ErrPayment = ProblemDetail{Type: TypePayment, Title: "Payment Failed", Status: http.StatusInternalServerError}

	ErrPersistence = ProblemDetail{Type: TypePersistence, Title: "Persistence Failed", Status: http.StatusInternalServerError}

	ErrTimeout = ProblemDetail{Type: TypeTimeout, Title: "Timed Out", Status: http.StatusGatewayTimeout}

	ErrConflict = ProblemDetail{Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict}

	ErrInternal = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(detail string, fieldErrors map[string]string) ProblemDetail {
	problem := ErrValidation.WithDetail(detail)
	if len(fieldErrors) > 0 {
		problem = problem.WithExtension("fields", fieldErrors)
	}
	return problem
}

// FromFault converts a classified failure, keeping the downstream status code and message.
func FromFault(f *fault.Error) ProblemDetail {
	var template ProblemDetail
	switch f.Kind {
	case fault.KindNotFound:
		template = ErrNotFound
	case fault.KindRejected:
		template = ErrRejected
	case fault.KindInvalidRange:
		template = ErrInvalidRange
	case fault.KindInvalidTier:
		template = ErrInvalidTier
	case fault.KindPaymentError:
		template = ErrPayment
	case fault.KindPersistenceError:
		template = ErrPersistence
	case fault.KindTimeout:
		template = ErrTimeout
	case fault.KindConflict:
		template = ErrConflict
	default:
		template = ErrInternal
	}
	problem := template.
		WithStatus(f.HTTPStatus()).
		WithDetail(f.Detail()).
		WithExtension("kind", string(f.Kind))
	if f.Compensation != "" {
		problem = problem.WithExtension("compensation", f.Compensation)
	}
	return problem
}
