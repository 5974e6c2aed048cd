package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// ContentTypeProblemJSON is the media type of every error body.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns an error into a problem when it recognises it.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder renders errors as problem+json, consulting its mappers in order.
// Classified failures are always recognised; everything unmatched is a 500 carrying the
// error text.
type ChainedResponder struct {
	typeBase string
	mappers  []ErrorMapper
}

// NewChainedResponder builds a responder. A non-empty typeBase is prefixed to relative
// problem types.
func NewChainedResponder(typeBase string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{typeBase: typeBase, mappers: mappers}
}

var defaultResponder = NewChainedResponder("")

// Respond writes the problem and aborts the gin chain.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.typeBase != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.typeBase + problem.Type
	}
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}
	if problem.Detail == "" {
		problem.Detail = http.StatusText(problem.Status)
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and writes the result.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.problemFor(err))
}

func (r *ChainedResponder) problemFor(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	if problem, ok := MapFault(err); ok {
		return problem
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	return ErrInternal.WithDetail(err.Error())
}

// Respond writes problem with the default responder.
func Respond(c *gin.Context, problem ProblemDetail) {
	defaultResponder.Respond(c, problem)
}

// RespondError writes err with the default responder.
func RespondError(c *gin.Context, err error) {
	defaultResponder.RespondError(c, err)
}

// MapFault recognises classified downstream failures.
func MapFault(err error) (ProblemDetail, bool) {
	f, ok := fault.As(err)
	if !ok {
		return ProblemDetail{}, false
	}
	return FromFault(f), true
}
