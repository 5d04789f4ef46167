package handlers

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vitalvas/vine/mux"
	"golang.org/x/time/rate"
)

// ErrInvalidRate is returned when RateLimitConfig.Rate is not positive.
var ErrInvalidRate = errors.New("rate limit: rate must be greater than zero")

const defaultRateLimitIdleTimeout = 10 * time.Minute

// RateLimitConfig configures the Rate Limit handler behaviour.
type RateLimitConfig struct {
	// Rate is the number of requests per second each client may make.
	// Required; must be greater than zero.
	Rate rate.Limit

	// Burst is the maximum number of requests a client may make at once.
	// Defaults to Rate rounded up, with a minimum of 1.
	Burst int

	// KeyFunc returns the key identifying the client. Defaults to the
	// host part of the request's remote address.
	KeyFunc func(r *mux.Request) string

	// IdleTimeout is how long a client's limiter is kept after its last
	// request. Defaults to 10 minutes.
	IdleTimeout time.Duration
}

// RateLimit returns a handler that applies a token bucket per client. A
// client that exceeds its budget receives 429 Too Many Requests with a
// Retry-After header and the chain is halted.
//
// It returns ErrInvalidRate if Rate is not greater than zero.
func RateLimit(cfg RateLimitConfig) (mux.HandlerFunc, error) {
	if cfg.Rate <= 0 {
		return nil, ErrInvalidRate
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
		if cfg.Rate != rate.Inf {
			burst = max(1, int(math.Ceil(float64(cfg.Rate))))
		}
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIP
	}

	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = defaultRateLimitIdleTimeout
	}

	limiters := newLimiterRegistry(cfg.Rate, burst, idle)
	limit := strconv.Itoa(burst)

	return func(c *mux.Context) *mux.Context {
		limiter := limiters.get(keyFunc(c.Request))

		c.Response.Header().Set("X-RateLimit-Limit", limit)

		if limiter.Allow() {
			return c
		}

		reservation := limiter.Reserve()
		delay := reservation.Delay()
		reservation.Cancel()

		c.Response.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
		c.Response.SendString(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))

		c.Logger().Debug("rate limit exceeded", "path", c.Request.Path, "retry_after", delay)

		return c.Halt()
	}, nil
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

func clientIP(r *mux.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry holds one limiter per client key and forgets clients
// that have been idle longer than idle.
type limiterRegistry struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterRegistry(limit rate.Limit, burst int, idle time.Duration) *limiterRegistry {
	return &limiterRegistry{
		limiters:  make(map[string]*limiterEntry),
		limit:     limit,
		burst:     burst,
		idle:      idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (r *limiterRegistry) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if now.Sub(r.lastSweep) >= r.idle {
		r.sweep(now)
	}

	entry, ok := r.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = entry
	}

	entry.lastSeen = now

	return entry.limiter
}

// sweep must be called with mu held.
func (r *limiterRegistry) sweep(now time.Time) {
	for key, entry := range r.limiters {
		if now.Sub(entry.lastSeen) >= r.idle {
			delete(r.limiters, key)
		}
	}

	r.lastSweep = now
}

func (r *limiterRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.limiters)
}
