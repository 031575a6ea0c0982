package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

// RequestLogger stores a logger carrying the request's correlation, user and
// trace IDs in the context, for handlers to fetch with logger.FromContext.
// Mount it after RequestLogging, Tracing and OptionalAuth.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := UserIDFromContext(ctx); id != "" {
				ctx = logger.WithUserID(ctx, id)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
