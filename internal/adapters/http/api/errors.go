package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/ekiden/internal/adapters/repository"
	service "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/internal/auth"
	"github.com/okian/ekiden/internal/domain/bulk"
	"github.com/okian/ekiden/internal/domain/distance"
	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrLimitExceeded   = errors.New("limit exceeded")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Error records the handler operation an error passed through.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps an error onto an HTTP status and a stable error code.
func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, duration.ErrFormat):
		return http.StatusBadRequest, "format_error"
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "weak_password"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, distance.ErrUnknownBucket),
		errors.Is(err, view.ErrUnknownMode),
		errors.Is(err, view.ErrUnknownSortKey),
		errors.Is(err, view.ErrNoSource),
		errors.Is(err, bulk.ErrRead):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrInvalidInvite):
		return http.StatusForbidden, "invalid_invite"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, repository.ErrStore):
		return http.StatusBadGateway, "remote_error"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
