package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vitalvas/vine/mux"
)

var ErrNoCacheControlRules = errors.New("cache control: at least one rule is required")

// CacheControlRule sets caching headers for responses whose Content-Type
// starts with ContentType (case-insensitive).
type CacheControlRule struct {
	ContentType string

	// Value is the Cache-Control header, for example "public, max-age=86400".
	Value string

	// Expires is added to the current time to build the Expires header.
	// Zero marks the response as already expired and a negative value
	// leaves the header out.
	Expires time.Duration
}

// CacheControlConfig configures CacheControl.
type CacheControlConfig struct {
	// Rules are evaluated in order and the first match wins.
	Rules []CacheControlRule

	// DefaultValue and DefaultExpires apply when no rule matches. An empty
	// DefaultValue sets no Cache-Control header.
	DefaultValue   string
	DefaultExpires time.Duration
}

type cachePolicy struct {
	prefix  string
	value   string
	expires time.Duration
}

func (p cachePolicy) apply(h http.Header, now time.Time) {
	if p.value != "" && h.Get("Cache-Control") == "" {
		h.Set("Cache-Control", p.value)
	}

	if p.expires >= 0 && h.Get("Expires") == "" {
		h.Set("Expires", now.UTC().Add(p.expires).Format(http.TimeFormat))
	}
}

// CacheControl returns a handler that sets Cache-Control and Expires from
// the response Content-Type. The headers are chosen when the status line is
// sent, so routes after the handler decide the Content-Type. Headers those
// routes set themselves are kept.
func CacheControl(cfg CacheControlConfig) (mux.HandlerFunc, error) {
	if len(cfg.Rules) == 0 {
		return nil, ErrNoCacheControlRules
	}

	policies := make([]cachePolicy, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		policies = append(policies, cachePolicy{
			prefix:  strings.ToLower(r.ContentType),
			value:   r.Value,
			expires: r.Expires,
		})
	}

	fallback := cachePolicy{value: cfg.DefaultValue, expires: cfg.DefaultExpires}

	choose := func(contentType string) cachePolicy {
		contentType = strings.ToLower(contentType)
		for _, p := range policies {
			if strings.HasPrefix(contentType, p.prefix) {
				return p
			}
		}

		return fallback
	}

	apply := func(res *mux.Response) {
		h := res.Header()
		choose(h.Get("Content-Type")).apply(h, time.Now())
	}

	return func(c *mux.Context) *mux.Context {
		c.Response.BeforeWriteHeader(apply)
		return c
	}, nil
}
