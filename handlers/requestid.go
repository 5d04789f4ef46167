package handlers

import (
	"github.com/google/uuid"
	"github.com/vitalvas/vine/mux"
)

const (
	// PropertyRequestID is the property key holding the request ID.
	PropertyRequestID = "RequestID"

	DefaultRequestIDHeader = "X-Request-ID"
)

// RequestIDFromContext returns the request ID assigned to c, or "".
func RequestIDFromContext(c *mux.Context) string {
	id, _ := c.Properties.String(PropertyRequestID)
	return id
}

// RequestIDConfig configures request ID assignment.
type RequestIDConfig struct {
	// HeaderName carries the ID in both directions, DefaultRequestIDHeader
	// when empty.
	HeaderName string

	// GenerateFunc creates a new ID, GenerateUUIDv4 when nil. Returning ""
	// leaves the request without an ID.
	GenerateFunc func(r *mux.Request) string

	// TrustIncoming reuses an ID sent by the client.
	TrustIncoming bool
}

func (cfg RequestIDConfig) header() string {
	if cfg.HeaderName == "" {
		return DefaultRequestIDHeader
	}

	return cfg.HeaderName
}

func (cfg RequestIDConfig) incoming(c *mux.Context) string {
	if !cfg.TrustIncoming || c.Request.Header == nil {
		return ""
	}

	return c.Request.Header.Get(cfg.header())
}

func (cfg RequestIDConfig) generate(r *mux.Request) string {
	if cfg.GenerateFunc == nil {
		return GenerateUUIDv4(r)
	}

	return cfg.GenerateFunc(r)
}

// Assign returns the request ID of c, assigning one first if needed. A new
// ID is written to the request and response headers and stored under
// PropertyRequestID.
func (cfg RequestIDConfig) Assign(c *mux.Context) string {
	if id := RequestIDFromContext(c); id != "" {
		return id
	}

	id := cfg.incoming(c)
	if id == "" {
		id = cfg.generate(c.Request)
	}

	if id == "" {
		return ""
	}

	name := cfg.header()
	if c.Request.Header != nil {
		c.Request.Header.Set(name, id)
	}

	c.Response.Header().Set(name, id)
	c.Properties.Set(PropertyRequestID, id)

	return id
}

// RequestID returns a handler that calls cfg.Assign for every request.
func RequestID(cfg RequestIDConfig) mux.HandlerFunc {
	return func(c *mux.Context) *mux.Context {
		cfg.Assign(c)
		return c
	}
}

// GenerateUUIDv4 returns a random UUID (RFC 9562, version 4).
func GenerateUUIDv4(*mux.Request) string {
	return uuid.NewString()
}

// GenerateUUIDv7 returns a time-ordered UUID (RFC 9562, version 7). Later
// IDs sort after earlier ones.
func GenerateUUIDv7(*mux.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
