package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

// Recovery recovers from panics and answers with the generic 500 error
// envelope instead of dropping the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeErrorEnvelope(w, http.StatusInternalServerError, "INTERNAL_ERROR", apperrors.GenericMessage)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
