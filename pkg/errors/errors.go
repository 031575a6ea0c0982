// Package errors defines the storefront's error vocabulary: sentinel values
// for errors.Is checks and AppError, which carries the HTTP status and the
// Spanish message shown to shoppers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrGone           = errors.New("gone")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrPaymentFailed  = errors.New("payment failed")
)

// GenericMessage is what shoppers see for unexpected failures.
const GenericMessage = "Error interno del servidor"

type kind struct {
	code     string
	status   int
	sentinel error
}

// kinds is searched in order; CONFLICT precedes ALREADY_EXISTS so a bare 409
// maps to ErrConflict.
var kinds = []kind{
	{"NOT_FOUND", http.StatusNotFound, ErrNotFound},
	{"CONFLICT", http.StatusConflict, ErrConflict},
	{"ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists},
	{"INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
	{"UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
	{"FORBIDDEN", http.StatusForbidden, ErrForbidden},
	{"GONE", http.StatusGone, ErrGone},
	{"PAYMENT_FAILED", http.StatusUnprocessableEntity, ErrPaymentFailed},
	{"SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	{"INTERNAL_ERROR", http.StatusInternalServerError, ErrInternal},
}

// AppError is an error with a stable code, an HTTP status and a message safe
// to show to the shopper.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	panic("errors: unregistered sentinel " + sentinel.Error())
}

// NotFound is a 404, e.g. "Producto no encontrado".
func NotFound(message string) *AppError { return newAppError(ErrNotFound, message) }

// AlreadyExists is a 409 for duplicate resources such as a registered email.
func AlreadyExists(message string) *AppError { return newAppError(ErrAlreadyExists, message) }

func InvalidInput(message string) *AppError { return newAppError(ErrInvalidInput, message) }

func Unauthorized(message string) *AppError { return newAppError(ErrUnauthorized, message) }

func Forbidden(message string) *AppError { return newAppError(ErrForbidden, message) }

// Conflict is a 409 for state clashes, e.g. committing a transaction twice.
func Conflict(message string) *AppError { return newAppError(ErrConflict, message) }

// Gone is a 410 for expired resources such as discount codes.
func Gone(message string) *AppError { return newAppError(ErrGone, message) }

// PaymentFailed is a 422 for a payment the gateway rejected.
func PaymentFailed(message string) *AppError { return newAppError(ErrPaymentFailed, message) }

// Internal hides err behind GenericMessage. err stays reachable through
// errors.Is for logging.
func Internal(err error) *AppError {
	e := newAppError(ErrInternal, GenericMessage)
	e.Err = err
	return e
}

// FromStatus rebuilds an AppError received over HTTP. The status picks the
// sentinel so errors.Is works on the client side; an empty code is derived
// from the status as well.
func FromStatus(status int, code, message string) *AppError {
	e := &AppError{Code: code, Message: message, Status: status}
	k, ok := kindForStatus(status)
	if ok {
		e.Err = k.sentinel
		if e.Code == "" {
			e.Code = k.code
		}
	} else if e.Code == "" {
		e.Code = "HTTP_ERROR"
	}
	return e
}

func kindForStatus(status int) (kind, bool) {
	for _, k := range kinds {
		if k.status == status {
			return k, true
		}
	}
	if status >= http.StatusInternalServerError {
		return kinds[len(kinds)-1], true
	}
	return kind{}, false
}

// Wrap prefixes err with message, keeping it matchable.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps err to a response status: an AppError's own status first,
// then any wrapped sentinel, otherwise 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}
