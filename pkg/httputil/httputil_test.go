package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/validator"
)

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) *ErrorResponse {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]int{"count": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"count":3}}`, rec.Body.String())
}

func TestWriteJSON_OmitsEmptyEnvelopeFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusTeapot, Response{Error: &ErrorResponse{Code: "X", Message: "y"}})

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"X","message":"y"}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	cases := map[string]struct {
		err     error
		status  int
		code    string
		message string
	}{
		"app error":       {apperrors.NotFound("Producto no encontrado"), http.StatusNotFound, "NOT_FOUND", "Producto no encontrado"},
		"wrapped app":     {fmt.Errorf("checkout: %w", apperrors.Gone("Código expirado")), http.StatusGone, "GONE", "Código expirado"},
		"not found":       {fmt.Errorf("load product: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND", "Recurso no encontrado"},
		"already exists":  {apperrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "El recurso ya existe"},
		"conflict":        {apperrors.ErrConflict, http.StatusConflict, "CONFLICT", "El recurso fue modificado"},
		"invalid input":   {apperrors.Wrap(apperrors.ErrInvalidInput, "cantidad"), http.StatusBadRequest, "INVALID_INPUT", "cantidad: invalid input"},
		"unexpected":      {errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR", apperrors.GenericMessage},
		"service failure": {apperrors.Internal(errors.New("pg down")), http.StatusInternalServerError, "INTERNAL_ERROR", apperrors.GenericMessage},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/api/products/9", nil), tc.err, logger.Discard())

			assert.Equal(t, tc.status, rec.Code)
			body := errorBody(t, rec)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestWriteError_LogsServerFailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)

	WriteError(httptest.NewRecorder(), req, apperrors.InvalidInput("Faltan campos"), fallback)
	assert.Zero(t, buf.Len())

	WriteError(httptest.NewRecorder(), req, errors.New("disk on fire"), fallback)
	assert.Contains(t, buf.String(), `"msg":"request failed"`)
	assert.Contains(t, buf.String(), "disk on fire")
	assert.Contains(t, buf.String(), "/api/transactions")
}

func TestWriteError_RequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "req-42"))
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.InvalidInput("Faltan campos requeridos"), logger.Discard())

	assert.Equal(t, "req-42", errorBody(t, rec).RequestID)
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestWriteValidationError(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		err := validator.Validate(loginBody{Email: "not-an-email"})
		require.Error(t, err)
		rec := httptest.NewRecorder()
		WriteValidationError(rec, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := errorBody(t, rec)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		assert.Equal(t, map[string]string{
			"email":    "debe ser un email válido",
			"password": "es requerido",
		}, body.Fields)
	})

	t.Run("undecodable body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteValidationError(rec, errors.New("unexpected EOF"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := errorBody(t, rec)
		assert.Equal(t, "INVALID_INPUT", body.Code)
		assert.Empty(t, body.Fields)
	})
}
