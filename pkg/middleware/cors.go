package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Cors allows the given origins to call the API with credentials. extraHeaders are
// added to the allowed request headers.
func Cors(allowOrigins []string, extraHeaders ...string) mux.MiddlewareFunc {
	headers := append([]string{"Authorization", "Content-Type", "X-Request-ID"}, extraHeaders...)
	c := cors.New(cors.Options{
		AllowedOrigins: allowOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id", "Retry-After"},
		AllowCredentials: true,
	})
	return c.Handler
}
