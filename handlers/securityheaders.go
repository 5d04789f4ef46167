package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vitalvas/vine/mux"
)

// ErrInvalidFrameOption is returned for an X-Frame-Options value other
// than DENY or SAMEORIGIN.
var ErrInvalidFrameOption = errors.New("security headers: frame option must be DENY, SAMEORIGIN, or empty")

// SecurityHeadersConfig selects the security headers added to every
// response. Empty optional fields leave their header out.
type SecurityHeadersConfig struct {
	// DisableContentTypeNosniff drops X-Content-Type-Options: nosniff.
	DisableContentTypeNosniff bool

	// FrameOption is DENY (default) or SAMEORIGIN.
	FrameOption string

	// ReferrerPolicy defaults to strict-origin-when-cross-origin.
	ReferrerPolicy string

	// HSTSMaxAge in seconds enables Strict-Transport-Security.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool
	HSTSPreload           bool

	CrossOriginOpenerPolicy string
	ContentSecurityPolicy   string
	PermissionsPolicy       string
}

// headers returns the fixed header set described by cfg.
func (cfg SecurityHeadersConfig) headers() ([][2]string, error) {
	frame := cfg.FrameOption
	switch frame {
	case "":
		frame = "DENY"
	case "DENY", "SAMEORIGIN":
	default:
		return nil, ErrInvalidFrameOption
	}

	referrer := cfg.ReferrerPolicy
	if referrer == "" {
		referrer = "strict-origin-when-cross-origin"
	}

	var out [][2]string
	add := func(name, value string) {
		if value != "" {
			out = append(out, [2]string{name, value})
		}
	}

	if !cfg.DisableContentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("X-Frame-Options", frame)
	add("Referrer-Policy", referrer)
	add("Strict-Transport-Security", cfg.hsts())
	add("Cross-Origin-Opener-Policy", cfg.CrossOriginOpenerPolicy)
	add("Content-Security-Policy", cfg.ContentSecurityPolicy)
	add("Permissions-Policy", cfg.PermissionsPolicy)

	return out, nil
}

func (cfg SecurityHeadersConfig) hsts() string {
	if cfg.HSTSMaxAge <= 0 {
		return ""
	}

	directives := []string{"max-age=" + strconv.Itoa(cfg.HSTSMaxAge)}
	if cfg.HSTSIncludeSubDomains {
		directives = append(directives, "includeSubDomains")
	}
	if cfg.HSTSPreload {
		directives = append(directives, "preload")
	}

	return strings.Join(directives, "; ")
}

// SecurityHeaders returns a handler that sets the configured security
// headers. Register it before the routes that write the response.
func SecurityHeaders(cfg SecurityHeadersConfig) (mux.HandlerFunc, error) {
	set, err := cfg.headers()
	if err != nil {
		return nil, err
	}

	return func(c *mux.Context) *mux.Context {
		h := c.Response.Header()
		for _, kv := range set {
			h.Set(kv[0], kv[1])
		}

		return c
	}, nil
}
