package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/httpapi"
	"github.com/iota-uz/fieldops/pkg/middleware"
	"github.com/iota-uz/fieldops/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	TokenParser   middleware.TokenParser
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, conf, middleware.DefaultLoggerOptions()),
		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CorsOrigins, conf.RequestIDHeader, conf.Auth.ImpersonateHeader),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	middlewares = append(middlewares,
		middleware.TracedMiddleware("authenticate"),
		middleware.Authenticate(options.TokenParser),
	)

	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(app, NotFound(), MethodNotAllowed())
	return serverInstance, nil
}

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found", map[string]string{"path": r.URL.Path})
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]string{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	})
}
