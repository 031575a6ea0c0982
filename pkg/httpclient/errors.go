package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 1 << 20

// errorBody covers the shapes the storefront backend (and the legacy mock
// server) use for failures:
//
//	{"error":{"code":"NOT_FOUND","message":"Producto no encontrado"}}
//	{"message":"Faltan campos requeridos"}
//	{"error":"Credenciales inválidas"}
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type structuredError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FallbackMessage is used when a failed response carries no usable message.
func FallbackMessage(status int) string {
	return fmt.Sprintf("Error HTTP %d", status)
}

// ParseResponseError reads the body of a non-2xx response and turns it into an
// AppError carrying the server-provided message. The status is mapped onto the
// matching sentinel so callers can use errors.Is. The body is consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.FromStatus(resp.StatusCode, "", FallbackMessage(resp.StatusCode))
	}

	code, message := extractMessage(raw)
	if message == "" {
		message = FallbackMessage(resp.StatusCode)
	}
	return apperrors.FromStatus(resp.StatusCode, code, message)
}

func extractMessage(raw []byte) (code, message string) {
	var body errorBody
	if json.Unmarshal(raw, &body) != nil {
		return "", ""
	}

	if len(body.Error) > 0 {
		var structured structuredError
		if json.Unmarshal(body.Error, &structured) == nil && structured.Message != "" {
			return structured.Code, structured.Message
		}
		var plain string
		if json.Unmarshal(body.Error, &plain) == nil && strings.TrimSpace(plain) != "" {
			return "", plain
		}
	}

	return "", strings.TrimSpace(body.Message)
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
