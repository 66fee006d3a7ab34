package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/httpapi"
	"github.com/iota-uz/fieldops/pkg/tenancy"
	"github.com/iota-uz/fieldops/pkg/tenanttx"
)

// errHandlerFailed marks a unit whose handler answered with an error status. The
// transaction is rolled back and the handler's own response is still delivered.
var errHandlerFailed = errors.New("handler responded with error status")

// bufferedResponseWriter holds the handler's response until the transaction outcome
// is known.
type bufferedResponseWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponseWriter() *bufferedResponseWriter {
	return &bufferedResponseWriter{header: http.Header{}}
}

func (b *bufferedResponseWriter) Header() http.Header {
	return b.header
}

func (b *bufferedResponseWriter) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedResponseWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponseWriter) Status() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

func (b *bufferedResponseWriter) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}
	w.WriteHeader(b.Status())
	_, _ = w.Write(b.body.Bytes())
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenancy.ErrUnauthenticated):
		_ = httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "authentication required", nil)
	case errors.Is(err, tenancy.ErrInvalidTenantSelector):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_TENANT_SELECTOR", "tenant selector must be a tenant id", nil)
	default:
		_ = httpapi.WriteError(w, http.StatusForbidden, httpapi.CodeForbidden, "no tenant access", nil)
	}
}

// WithTenantTransaction runs the rest of the chain inside one tenant transaction. The
// identity must already be in the context; anonymous requests get 401 before any
// connection is taken from the pool. The transaction commits only when the handler
// answers with a status below 400 and does not panic.
func WithTenantTransaction(runner tenanttx.Runner, impersonateHeader string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := composables.UseLogger(r.Context())

			identity, err := composables.UseIdentity(r.Context())
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "authentication required", nil)
				return
			}
			session, err := tenancy.ResolveSession(identity, r.Header.Get(impersonateHeader))
			if err != nil {
				logger.WithError(err).WithField("subject", identity.ID).Info("tenant session rejected")
				writeSessionError(w, err)
				return
			}
			if session.Impersonating {
				logger = logger.WithField("act-as-tenant", session.TenantID.String())
				logger.WithField("subject", identity.ID).Info("superadmin impersonation")
			}

			buf := newBufferedResponseWriter()
			err = runner.WithTenantTransaction(r.Context(), session, func(txCtx context.Context) error {
				txCtx = composables.WithLogger(txCtx, logger)
				next.ServeHTTP(buf, r.WithContext(txCtx))
				if buf.Status() >= http.StatusBadRequest {
					return errHandlerFailed
				}
				return nil
			})

			switch {
			case err == nil, errors.Is(err, errHandlerFailed):
				buf.flushTo(w)
			case errors.Is(err, tenancy.ErrPoolExhausted):
				logger.WithError(err).Warn("no database connection available")
				w.Header().Set("Retry-After", "1")
				_ = httpapi.WriteError(w, http.StatusServiceUnavailable, httpapi.CodeUnavailable, "service temporarily unavailable", nil)
			case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
				logger.WithError(err).Info("client went away, transaction rolled back")
			default:
				logger.WithError(err).Error("tenant transaction failed")
				_ = httpapi.WriteInternal(w, composables.UseRequestID(r.Context()), r.URL.Path)
			}
		})
	}
}
