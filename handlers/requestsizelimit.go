package handlers

import (
	"errors"
	"net/http"

	"github.com/vitalvas/vine/mux"
)

// ErrInvalidMaxSize is returned when RequestSizeLimitConfig.MaxBytes is not
// greater than zero.
var ErrInvalidMaxSize = errors.New("request size limit: max size must be greater than zero")

// RequestSizeLimitConfig configures the Request Size Limit handler behaviour.
type RequestSizeLimitConfig struct {
	// MaxBytes is the maximum allowed request body size in bytes.
	// Must be greater than zero.
	MaxBytes int64
}

// RequestSizeLimit returns a handler that limits the size of incoming
// request bodies. A request whose declared Content-Length exceeds the limit
// is answered with 413 Request Entity Too Large and the chain is halted.
// Otherwise the body is wrapped with http.MaxBytesReader so that later
// routes receive an error when reading beyond the limit.
//
// It returns ErrInvalidMaxSize if MaxBytes is not greater than zero.
func RequestSizeLimit(cfg RequestSizeLimitConfig) (mux.HandlerFunc, error) {
	if cfg.MaxBytes <= 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes

	return func(c *mux.Context) *mux.Context {
		if c.Request.Raw != nil && c.Request.Raw.ContentLength > maxBytes {
			c.Response.SendString(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge))
			return c.Halt()
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Response.Unwrap(), c.Request.Body, maxBytes)
		}

		return c
	}, nil
}
