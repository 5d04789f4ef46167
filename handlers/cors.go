package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/vitalvas/vine/mux"
)

var (
	// ErrWildcardCredentials is returned when AllowedOrigins contains "*"
	// and AllowCredentials is set. Use AllowOriginFunc to allow dynamic
	// origins with credentials.
	ErrWildcardCredentials = errors.New("cors: wildcard origin cannot be combined with credentials")

	ErrCORSOriginPattern = errors.New("cors: invalid origin pattern")
)

// CORSConfig configures CORS. Origins are compared case-insensitively.
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*", or patterns with a single
	// wildcard such as "https://*.example.com".
	AllowedOrigins []string

	// AllowOriginFunc is consulted for origins AllowedOrigins does not match.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods is advertised as Access-Control-Allow-Methods. When
	// empty the methods registered on the router for the path are used.
	AllowedMethods []string

	// AllowedHeaders is advertised on preflight. When empty, or when it
	// contains "*", the requested headers are echoed back.
	AllowedHeaders []string

	ExposeHeaders    []string
	AllowCredentials bool

	// MaxAge in seconds. Zero omits Access-Control-Max-Age and a negative
	// value sends 0.
	MaxAge int

	// OptionsStatusCode is the preflight status, 204 by default.
	OptionsStatusCode int

	// OptionsPassthrough keeps the chain running after a preflight.
	OptionsPassthrough bool

	// AllowPrivateNetwork answers Access-Control-Request-Private-Network.
	AllowPrivateNetwork bool
}

type originPattern struct {
	prefix, suffix string
}

func (p originPattern) match(origin string) bool {
	return len(origin) >= len(p.prefix)+len(p.suffix) &&
		strings.HasPrefix(origin, p.prefix) &&
		strings.HasSuffix(origin, p.suffix)
}

// corsPolicy is the compiled form of a CORSConfig.
type corsPolicy struct {
	cfg          CORSConfig
	anyOrigin    bool
	origins      map[string]struct{}
	patterns     []originPattern
	echoHeaders  bool
	allowHeaders string
	exposed      string
	maxAge       string
	status       int
	router       *mux.Router
}

func newCORSPolicy(r *mux.Router, cfg CORSConfig) (*corsPolicy, error) {
	p := &corsPolicy{
		cfg:     cfg,
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		exposed: strings.Join(cfg.ExposeHeaders, ","),
		status:  cfg.OptionsStatusCode,
		router:  r,
	}

	for _, o := range cfg.AllowedOrigins {
		o = strings.ToLower(o)

		switch n := strings.Count(o, "*"); {
		case o == "*":
			p.anyOrigin = true
		case n == 0:
			p.origins[o] = struct{}{}
		case n == 1:
			prefix, suffix, _ := strings.Cut(o, "*")
			p.patterns = append(p.patterns, originPattern{prefix: prefix, suffix: suffix})
		default:
			return nil, fmt.Errorf("%w: %q", ErrCORSOriginPattern, o)
		}
	}

	if p.anyOrigin && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	if len(cfg.AllowedHeaders) == 0 || slices.Contains(cfg.AllowedHeaders, "*") {
		p.echoHeaders = true
	} else {
		p.allowHeaders = strings.Join(cfg.AllowedHeaders, ",")
	}

	switch {
	case cfg.MaxAge > 0:
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	case cfg.MaxAge < 0:
		p.maxAge = "0"
	}

	if p.status == 0 {
		p.status = http.StatusNoContent
	}

	return p, nil
}

func (p *corsPolicy) allowed(origin string) bool {
	if p.anyOrigin {
		return true
	}

	lower := strings.ToLower(origin)
	if _, ok := p.origins[lower]; ok {
		return true
	}

	for _, pat := range p.patterns {
		if pat.match(lower) {
			return true
		}
	}

	return p.cfg.AllowOriginFunc != nil && p.cfg.AllowOriginFunc(origin)
}

func (p *corsPolicy) methods(path string) string {
	if len(p.cfg.AllowedMethods) > 0 || p.router == nil {
		return strings.Join(p.cfg.AllowedMethods, ",")
	}

	return strings.Join(p.router.AllowedMethods(path), ",")
}

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

func (p *corsPolicy) handle(c *mux.Context) *mux.Context {
	h := c.Response.Header()
	req := c.Request.Header
	origin := req.Get("Origin")

	if origin == "" {
		if !p.anyOrigin {
			h.Add("Vary", "Origin")
		}

		return c
	}

	if !p.allowed(origin) {
		return c
	}

	if p.anyOrigin {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}

	if p.cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}

	setIf(h, "Access-Control-Allow-Methods", p.methods(c.Request.Path))

	if c.Request.Method != http.MethodOptions || req.Get("Access-Control-Request-Method") == "" {
		setIf(h, "Access-Control-Expose-Headers", p.exposed)
		return c
	}

	if p.echoHeaders {
		setIf(h, "Access-Control-Allow-Headers", req.Get("Access-Control-Request-Headers"))
	} else {
		h.Set("Access-Control-Allow-Headers", p.allowHeaders)
	}

	setIf(h, "Access-Control-Max-Age", p.maxAge)

	if p.cfg.AllowPrivateNetwork && req.Get("Access-Control-Request-Private-Network") == "true" {
		h.Set("Access-Control-Allow-Private-Network", "true")
		h.Add("Vary", "Access-Control-Request-Private-Network")
	}

	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	if p.cfg.OptionsPassthrough {
		return c
	}

	c.Response.WriteHeader(p.status)

	return c.Halt()
}

// CORS returns a handler that applies the CORS protocol of the Fetch
// standard. Register it first in the chain. Preflight requests are answered
// with the configured status and the chain is halted unless
// OptionsPassthrough is set; other requests from allowed origins get the
// CORS response headers and continue.
//
// When AllowedMethods is empty the methods come from r, which may otherwise
// be nil.
func CORS(r *mux.Router, cfg CORSConfig) (mux.HandlerFunc, error) {
	p, err := newCORSPolicy(r, cfg)
	if err != nil {
		return nil, err
	}

	return p.handle, nil
}
