package mux

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-hclog"
)

// HandlerFunc is the signature of a route handler. It receives the request
// context, may mutate its request, response and properties, and returns the
// context that the next eligible route will receive.
type HandlerFunc func(*Context) *Context

// Request is the inbound side of a Context.
type Request struct {
	// Method is the request method. Handlers may rewrite it to influence
	// which later routes in the chain are eligible.
	Method string
	// Path is the cleaned URL path used for route matching.
	Path string
	// Header holds the request header fields.
	Header http.Header
	// Body is the request body.
	Body io.ReadCloser
	// RemoteAddr is the network address of the client.
	RemoteAddr string
	// Params holds the placeholder values captured by the route currently
	// being invoked.
	Params map[string]string
	// Raw is the underlying transport request.
	Raw *http.Request
}

// Query returns the parsed URL query of the request.
func (r *Request) Query() url.Values {
	if r.Raw == nil || r.Raw.URL == nil {
		return url.Values{}
	}

	return r.Raw.URL.Query()
}

// Param returns a placeholder value captured for the current route.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.Params[name]
	return v, ok
}

// Context is the unit of work passed along a dispatch chain. It is created
// once per request and never shared between requests.
type Context struct {
	Request    *Request
	Response   *Response
	Properties *Properties

	ctx    context.Context
	logger hclog.Logger
	route  *Route
	halted bool
	err    error
}

// NewContext wraps a transport request and response. A nil logger discards
// all output.
func NewContext(w http.ResponseWriter, r *http.Request, logger hclog.Logger) *Context {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	path := r.URL.Path
	if cleaned := cleanPath(path); cleaned != path {
		path = cleaned
	}

	return &Context{
		Request: &Request{
			Method:     r.Method,
			Path:       path,
			Header:     r.Header,
			Body:       r.Body,
			RemoteAddr: r.RemoteAddr,
			Raw:        r,
		},
		Response:   newResponse(w),
		Properties: NewProperties(),
		ctx:        r.Context(),
		logger:     logger,
	}
}

// Context returns the request's context.Context. It is cancelled when the
// client goes away or the server stops.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}

	return c.ctx
}

// Logger returns the logger injected by the server for this request.
func (c *Context) Logger() hclog.Logger {
	if c.logger == nil {
		return hclog.NewNullLogger()
	}

	return c.logger
}

// SetLogger replaces the logger of c. A nil logger discards all output.
func (c *Context) SetLogger(logger hclog.Logger) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	c.logger = logger
}

// CurrentRoute returns the route being invoked, or nil outside dispatch.
func (c *Context) CurrentRoute() *Route {
	return c.route
}

// Halt marks the chain as complete. Dispatch invokes no further routes
// once the returned context is halted.
func (c *Context) Halt() *Context {
	c.halted = true
	return c
}

// Halted reports whether a handler stopped the chain.
func (c *Context) Halted() bool {
	return c.halted
}

// Fail records a handler error and stops the chain. Dispatch returns err.
func (c *Context) Fail(err error) *Context {
	c.err = err
	c.halted = true
	return c
}

// Err returns the error recorded with Fail.
func (c *Context) Err() error {
	return c.err
}
