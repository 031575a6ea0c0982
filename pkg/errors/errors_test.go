package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	bare := &AppError{Code: "NOT_FOUND", Message: "Producto no encontrado"}
	assert.Equal(t, "NOT_FOUND: Producto no encontrado", bare.Error())
	assert.Nil(t, bare.Unwrap())

	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "algo falló", Err: errors.New("redis connection lost")}
	assert.Equal(t, "INTERNAL_ERROR: algo falló: redis connection lost", wrapped.Error())
}

func TestConstructors(t *testing.T) {
	cases := map[string]struct {
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		"not found":      {NotFound("Producto no encontrado"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		"already exists": {AlreadyExists("El email ya está registrado"), "ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists},
		"invalid input":  {InvalidInput("Faltan campos requeridos"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		"unauthorized":   {Unauthorized("Credenciales inválidas"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		"forbidden":      {Forbidden("Acceso denegado"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		"conflict":       {Conflict("Transacción ya confirmada"), "CONFLICT", http.StatusConflict, ErrConflict},
		"gone":           {Gone("Código expirado"), "GONE", http.StatusGone, ErrGone},
		"payment failed": {PaymentFailed("Pago rechazado"), "PAYMENT_FAILED", http.StatusUnprocessableEntity, ErrPaymentFailed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.Status)
			assert.ErrorIs(t, tc.err, tc.sentinel)
			assert.Equal(t, tc.status, HTTPStatus(fmt.Errorf("handler: %w", tc.err)))
		})
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	assert.Equal(t, GenericMessage, err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "boom")
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status   int
		code     string
		wantCode string
		sentinel error
	}{
		{http.StatusNotFound, "", "NOT_FOUND", ErrNotFound},
		{http.StatusBadRequest, "", "INVALID_INPUT", ErrInvalidInput},
		{http.StatusConflict, "", "CONFLICT", ErrConflict},
		{http.StatusConflict, "ALREADY_EXISTS", "ALREADY_EXISTS", ErrConflict},
		{http.StatusBadGateway, "", "INTERNAL_ERROR", ErrInternal},
		{http.StatusServiceUnavailable, "", "SERVICE_UNAVAILABLE", ErrServiceUnavail},
		{http.StatusTeapot, "CUSTOM", "CUSTOM", nil},
		{http.StatusTeapot, "", "HTTP_ERROR", nil},
	}
	for _, tc := range cases {
		got := FromStatus(tc.status, tc.code, "mensaje")
		assert.Equal(t, tc.wantCode, got.Code, "status %d", tc.status)
		assert.Equal(t, tc.status, got.Status)
		assert.Equal(t, "mensaje", got.Message)
		if tc.sentinel == nil {
			assert.Nil(t, got.Err)
		} else {
			assert.ErrorIs(t, got, tc.sentinel)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get: %w", ErrNotFound)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Wrap(ErrAlreadyExists, "insert")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(ErrInvalidInput, "decode")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(Wrap(ErrServiceUnavail, "dial")))
	assert.Equal(t, http.StatusTeapot, HTTPStatus(FromStatus(http.StatusTeapot, "", "x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrGone, "redeem BIENVENIDA10")
	assert.EqualError(t, err, "redeem BIENVENIDA10: gone")
	assert.ErrorIs(t, err, ErrGone)
}
