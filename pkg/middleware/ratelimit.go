package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/httpapi"
)

const rateLimitPrefix = "fieldops_rl"

type RateLimitConfig struct {
	RequestsPerPeriod int
	// Defaults to one second.
	Period  time.Duration
	Store   limiter.Store
	KeyFunc func(r *http.Request) string
}

func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{
		Prefix: rateLimitPrefix,
	})
}

// IPKeyFunc keys requests by the client address resolved by WithLogger.
func IPKeyFunc(r *http.Request) string {
	if ip, ok := composables.UseIP(r.Context()); ok && ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// EndpointKeyFunc scopes the IP key to one endpoint.
func EndpointKeyFunc(endpoint string) func(r *http.Request) string {
	return func(r *http.Request) string {
		return endpoint + ":" + IPKeyFunc(r)
	}
}

func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	if cfg.Period <= 0 {
		cfg.Period = time.Second
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPKeyFunc
	}
	lim := limiter.New(cfg.Store, limiter.Rate{
		Period: cfg.Period,
		Limit:  int64(cfg.RequestsPerPeriod),
	})

	return func(next http.Handler) http.Handler {
		if cfg.RequestsPerPeriod <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := lim.Get(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				// Fail open when the store is unreachable.
				composables.UseLogger(r.Context()).WithError(err).Warn("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
			if lctx.Reached {
				retry := lctx.Reset - time.Now().Unix()
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				_ = httpapi.WriteError(w, http.StatusTooManyRequests, httpapi.CodeRateLimited, "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
