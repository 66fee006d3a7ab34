package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/fieldops/pkg/authz"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/httpapi"
)

// Authorizer is satisfied by *authz.Service.
type Authorizer interface {
	Authorize(ctx context.Context, req authz.Request) error
}

// RequirePermission checks the caller's role against object/action before any database
// work starts.
func RequirePermission(authorizer Authorizer, object, action string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := composables.UseIdentity(r.Context())
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "authentication required", nil)
				return
			}
			err = authorizer.Authorize(r.Context(), authz.RequestForRole(identity.Role, object, action))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, authz.ErrForbidden):
				_ = httpapi.WriteError(w, http.StatusForbidden, authz.ErrorCodeForbidden, "permission denied", map[string]string{
					"object": object,
					"action": action,
				})
			default:
				composables.UseLogger(r.Context()).WithError(err).Error("authorization check failed")
				_ = httpapi.WriteInternal(w, composables.UseRequestID(r.Context()), r.URL.Path)
			}
		})
	}
}
