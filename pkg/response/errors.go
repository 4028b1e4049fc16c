package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Mapping ties a sentinel error to a status and a reason code. An empty Message uses
// the error's own text.
type Mapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// Info is the outcome of mapping an error.
type Info struct {
	Status  int
	Code    string
	Message string
}

// ErrorMapper maps domain errors to HTTP responses with errors.Is, in registration order.
type ErrorMapper struct {
	mappings []Mapping
}

// NewErrorMapper creates a mapper with the given mappings.
func NewErrorMapper(mappings ...Mapping) *ErrorMapper {
	return &ErrorMapper{mappings: mappings}
}

// With adds a mapping.
func (m *ErrorMapper) With(err error, status int, code string) *ErrorMapper {
	m.mappings = append(m.mappings, Mapping{Err: err, Status: status, Code: code})
	return m
}

// Map converts an error. Unknown errors become a generic 500 so internals never leak.
func (m *ErrorMapper) Map(err error) Info {
	for _, mp := range m.mappings {
		if errors.Is(err, mp.Err) {
			msg := mp.Message
			if msg == "" {
				msg = mp.Err.Error()
			}
			return Info{Status: mp.Status, Code: mp.Code, Message: msg}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Info{Status: http.StatusGatewayTimeout, Code: "timeout", Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return Info{Status: http.StatusServiceUnavailable, Code: "cancelled", Message: "request cancelled"}
	}
	return Info{Status: http.StatusInternalServerError, Code: "internal", Message: "internal server error"}
}

// Error writes the mapped error. 5xx responses also record err on the gin context so the
// access log carries the cause.
func (m *ErrorMapper) Error(c *gin.Context, err error) {
	info := m.Map(err)
	if info.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Fail(c, info.Status, info.Code, info.Message)
}
