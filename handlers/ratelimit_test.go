package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/vine/mux"
	"golang.org/x/time/rate"
)

func TestRateLimit(t *testing.T) {
	t.Run("invalid rate returns error", func(t *testing.T) {
		for _, r := range []rate.Limit{0, -1} {
			h, err := RateLimit(RateLimitConfig{Rate: r})
			assert.Nil(t, h)
			assert.ErrorIs(t, err, ErrInvalidRate)
		}
	})

	t.Run("rejects requests over the burst", func(t *testing.T) {
		mw, err := RateLimit(RateLimitConfig{Rate: 0.5, Burst: 2})
		require.NoError(t, err)

		calls := 0
		r := chainRouter(mw, func(c *mux.Context) *mux.Context {
			calls++
			c.Response.WriteHeader(http.StatusOK)
			return c
		}, mux.MethodGet, "/test")

		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for range 3 {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			r.ServeHTTP(w, req)

			codes = append(codes, w.Code)
			last = w
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))

		retry := last.Header().Get("Retry-After")
		assert.Contains(t, []string{"1", "2"}, retry)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		mw, err := RateLimit(RateLimitConfig{Rate: 0.1, Burst: 1})
		require.NoError(t, err)
		r := chainRouter(mw, okHandler, mux.MethodGet, "/test")

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = addr
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, addr)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "10.0.0.1:2"
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("custom key func", func(t *testing.T) {
		mw, err := RateLimit(RateLimitConfig{
			Rate:  0.1,
			Burst: 1,
			KeyFunc: func(r *mux.Request) string {
				return r.Header.Get("X-API-Key")
			},
		})
		require.NoError(t, err)
		r := chainRouter(mw, okHandler, mux.MethodGet, "/test")

		send := func(key string) int {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-API-Key", key)
			r.ServeHTTP(w, req)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, send("a"))
		assert.Equal(t, http.StatusOK, send("b"))
		assert.Equal(t, http.StatusTooManyRequests, send("a"))
	})

	t.Run("default burst follows rate", func(t *testing.T) {
		mw, err := RateLimit(RateLimitConfig{Rate: 2.5})
		require.NoError(t, err)
		r := chainRouter(mw, okHandler, mux.MethodGet, "/test")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	})
}

func TestLimiterRegistry(t *testing.T) {
	t.Run("same key returns the same limiter", func(t *testing.T) {
		reg := newLimiterRegistry(1, 1, time.Minute)

		assert.Same(t, reg.get("a"), reg.get("a"))
		assert.NotSame(t, reg.get("a"), reg.get("b"))
		assert.Equal(t, 2, reg.len())
	})

	t.Run("idle clients are dropped", func(t *testing.T) {
		now := time.Unix(1000, 0)
		reg := newLimiterRegistry(1, 1, time.Minute)
		reg.now = func() time.Time { return now }
		reg.lastSweep = now

		reg.get("old")
		now = now.Add(30 * time.Second)
		reg.get("recent")

		now = now.Add(45 * time.Second)
		reg.get("new")

		assert.Equal(t, 2, reg.len())

		reg.mu.Lock()
		_, hasOld := reg.limiters["old"]
		reg.mu.Unlock()
		assert.False(t, hasOld)
	})
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 2, retryAfterSeconds(1500*time.Millisecond))
}

func BenchmarkRateLimit(b *testing.B) {
	mw, err := RateLimit(RateLimitConfig{Rate: rate.Inf})
	if err != nil {
		b.Fatal(err)
	}
	r := chainRouter(mw, okHandler, mux.MethodGet, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	for b.Loop() {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
}
