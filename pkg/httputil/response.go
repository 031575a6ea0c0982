// Package httputil writes the storefront API's JSON envelope:
// {"data": ...} on success and {"error": {...}} on failure.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/validator"
)

// Response is the envelope for every API body.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// sentinelMessages covers errors that reach a handler without an AppError.
var sentinelMessages = []struct {
	sentinel error
	code     string
	message  string
}{
	{apperrors.ErrNotFound, "NOT_FOUND", "Recurso no encontrado"},
	{apperrors.ErrAlreadyExists, "ALREADY_EXISTS", "El recurso ya existe"},
	{apperrors.ErrConflict, "CONFLICT", "El recurso fue modificado"},
	{apperrors.ErrUnauthorized, "UNAUTHORIZED", "No autorizado"},
	{apperrors.ErrForbidden, "FORBIDDEN", "Acceso denegado"},
}

// WriteJSON encodes v with the given status. Encoding errors are dropped
// since the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError renders err as an error envelope tagged with the request's
// correlation ID. Server-side failures are logged with the request logger,
// or with fallback when the context carries none, and never expose their
// cause to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	appErr := asAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", appErr.Status),
			slog.Any("error", err),
		)
	}
	WriteJSON(w, appErr.Status, Response{Error: &ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

func asAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, apperrors.ErrInvalidInput) {
		return apperrors.InvalidInput(err.Error())
	}
	for _, m := range sentinelMessages {
		if errors.Is(err, m.sentinel) {
			return &apperrors.AppError{
				Code:    m.code,
				Message: m.message,
				Status:  apperrors.HTTPStatus(m.sentinel),
				Err:     err,
			}
		}
	}
	return apperrors.Internal(err)
}

// WriteValidationError answers 400. Validator failures list the offending
// fields; any other error means the body could not be decoded.
func WriteValidationError(w http.ResponseWriter, err error) {
	body := &ErrorResponse{Code: "INVALID_INPUT", Message: "Cuerpo de la solicitud inválido"}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		body = &ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Faltan campos requeridos o son inválidos",
			Fields:  valErr.Fields(),
		}
	}
	WriteJSON(w, http.StatusBadRequest, Response{Error: body})
}
