package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/middleware"
)

type contextKey string

const ownerKey contextKey = "session_owner"

// SessionOwner resolves whose cart and wishlist a request addresses: the
// authenticated user when OptionalAuth found valid claims, otherwise the
// guest named by X-User-ID. Requests with neither are rejected with 401.
func SessionOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var owner string
		if uid := middleware.UserIDFromContext(r.Context()); uid != "" {
			owner = service.OwnerForUser(uid)
		} else if guest := strings.TrimSpace(r.Header.Get("X-User-ID")); guest != "" {
			owner = service.OwnerForGuest(guest)
		}
		if owner == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("Debes identificarte para usar el carrito"), nil)
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "El cuerpo debe ser application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
