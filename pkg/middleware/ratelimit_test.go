package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		RequestsPerPeriod: 2,
		Period:            time.Minute,
		Store:             NewMemoryStore(),
	})(statusHandler(http.StatusOK))

	send := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	require.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	require.Equal(t, http.StatusOK, send("10.0.0.1:1001").Code)
	limited := send("10.0.0.1:1002")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.NotEmpty(t, limited.Header().Get("Retry-After"))
	require.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestsPerPeriod: 0})(statusHandler(http.StatusOK))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore("::not a url")
	require.Error(t, err)
}

func TestEndpointKeyFunc(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	require.Equal(t, "jobs.export:192.0.2.1", EndpointKeyFunc("jobs.export")(r))
}
