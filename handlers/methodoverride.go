package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/vine/mux"
)

// ErrInvalidOverrideMethod is returned for a configured method that is not
// an upper-case route method.
var ErrInvalidOverrideMethod = errors.New("method override: allowed methods must be valid HTTP methods")

// MethodOverrideConfig configures MethodOverride.
type MethodOverrideConfig struct {
	// HeaderNames are checked in order and the first non-empty one wins.
	// Defaults to X-HTTP-Method-Override, X-Method-Override and
	// X-HTTP-Method.
	HeaderNames []string

	// OriginalMethods are the request methods that may be overridden.
	// Defaults to POST.
	OriginalMethods []string

	// AllowedMethods are the accepted override values. Defaults to PUT,
	// PATCH, DELETE, HEAD and OPTIONS.
	AllowedMethods []string
}

var (
	defaultOverrideHeaders = []string{"X-HTTP-Method-Override", "X-Method-Override", "X-HTTP-Method"}
	defaultOriginalMethods = []string{http.MethodPost}
	defaultOverrideMethods = []string{http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions}
)

type methodSet map[string]struct{}

func newMethodSet(methods []string, fallback []string) (methodSet, error) {
	if methods == nil {
		methods = fallback
	}

	set := make(methodSet, len(methods))
	for _, m := range methods {
		parsed, err := mux.ParseMethod(m)
		if m == "" || m != strings.ToUpper(m) || err != nil || parsed == mux.MethodAll {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOverrideMethod, m)
		}

		set[m] = struct{}{}
	}

	return set, nil
}

func (s methodSet) has(m string) bool {
	_, ok := s[m]
	return ok
}

// MethodOverride returns a handler that replaces the request method with
// the value of an override header. The override applies only to the
// original methods and only for allowed values; the header is removed once
// used. Routes registered after it see the overridden method.
func MethodOverride(cfg MethodOverrideConfig) (mux.HandlerFunc, error) {
	originals, err := newMethodSet(cfg.OriginalMethods, defaultOriginalMethods)
	if err != nil {
		return nil, err
	}

	allowed, err := newMethodSet(cfg.AllowedMethods, defaultOverrideMethods)
	if err != nil {
		return nil, err
	}

	headers := append([]string(nil), cfg.HeaderNames...)
	if len(headers) == 0 {
		headers = defaultOverrideHeaders
	}

	return func(c *mux.Context) *mux.Context {
		if !originals.has(c.Request.Method) {
			return c
		}

		name, value := firstHeader(c.Request.Header, headers)
		if value == "" {
			return c
		}

		if override := strings.ToUpper(value); allowed.has(override) {
			c.Logger().Trace("method overridden", "from", c.Request.Method, "to", override)
			c.Request.Method = override
			c.Request.Header.Del(name)
		}

		return c
	}, nil
}

// firstHeader returns the first of names with a non-empty value in h.
func firstHeader(h http.Header, names []string) (string, string) {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return name, v
		}
	}

	return "", ""
}
