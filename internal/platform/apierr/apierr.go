package apierr

import (
	"fmt"
	"net/http"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

// Error carries an HTTP status alongside a stable machine code for the API
// edge.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromDomain maps a domain error to its HTTP shape.
func FromDomain(err error) *Error {
	code := domainerr.CodeOf(err)
	switch code {
	case domainerr.CodeValidation:
		return New(http.StatusBadRequest, string(code), err)
	case domainerr.CodeNotFound:
		return New(http.StatusNotFound, string(code), err)
	case domainerr.CodeConflict:
		return New(http.StatusConflict, string(code), err)
	case domainerr.CodeForbidden:
		return New(http.StatusForbidden, string(code), err)
	case domainerr.CodeRuleViolation:
		return New(http.StatusUnprocessableEntity, string(code), err)
	default:
		return New(http.StatusInternalServerError, string(domainerr.CodeInternal), err)
	}
}
