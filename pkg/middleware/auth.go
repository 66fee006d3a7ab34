package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/httpapi"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

// TokenParser turns a raw bearer token into a verified identity.
type TokenParser interface {
	Parse(raw string) (*tenancy.Identity, error)
}

// Authenticate verifies the bearer token, when present, and stores the identity in the
// request context. Requests without a token pass through anonymous; an invalid token is
// rejected outright.
func Authenticate(parser TokenParser) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "malformed authorization header", nil)
				return
			}
			identity, err := parser.Parse(strings.TrimSpace(raw))
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Info("rejected bearer token")
				_ = httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithIdentity(r.Context(), identity)))
		})
	}
}
