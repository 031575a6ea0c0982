package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httputil"
)

type claimsKey struct{}

// Claims is what a validated bearer token says about its holder.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type TokenValidator func(token string) (*Claims, error)

// Auth answers 401 unless the request carries a bearer token accepted by
// validate; the claims are then available through ClaimsFromContext.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := bearerToken(r)
			if !found {
				writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "Debes iniciar sesión")
				return
			}
			claims, err := validate(token)
			if err != nil {
				writeErrorEnvelope(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sesión inválida o expirada")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims for a valid token and otherwise serves the
// request anonymously.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, found := bearerToken(r); found {
				if claims, err := validate(token); err == nil {
					r = r.WithContext(ContextWithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 403 unless the caller's role is one of roles. It must
// run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, RoleFromContext(r.Context())) {
				writeErrorEnvelope(w, http.StatusForbidden, "FORBIDDEN", "No tienes permisos para esta acción")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

func UserIDFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.UserID
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Role
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

func writeErrorEnvelope(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: message},
	})
}
