package mux

import (
	"sync/atomic"
)

// Route binds a method filter and a compiled path pattern to a handler.
// Everything except the enabled flag is fixed at registration.
type Route struct {
	method   Method
	template string
	pattern  *Pattern
	params   []string
	handler  HandlerFunc
	name     string
	disabled atomic.Bool
}

// newRoute compiles template and validates the binding.
func newRoute(handler HandlerFunc, method Method, template string) (*Route, error) {
	if handler == nil {
		return nil, &ConfigError{Reason: "handler must not be nil"}
	}

	if method == "" {
		method = MethodAll
	}
	if !method.Valid() {
		return nil, &ConfigError{Reason: "unknown http method " + string(method)}
	}

	pattern, params := Compile(template)
	if err := checkDuplicateParams(params); err != nil {
		return nil, &ConfigError{Reason: err.Error() + " in " + template}
	}

	return &Route{
		method:   method,
		template: template,
		pattern:  pattern,
		params:   params,
		handler:  handler,
	}, nil
}

// Matches reports whether the route is enabled, its method filter accepts
// the request method and its pattern matches the whole request path.
func (r *Route) Matches(c *Context) bool {
	if r.disabled.Load() {
		return false
	}

	if !r.method.Accepts(c.Request.Method) {
		return false
	}

	return r.pattern.MatchString(c.Request.Path)
}

// Invoke stores the route's placeholder values on the request and calls the
// handler, returning the context it produced.
func (r *Route) Invoke(c *Context) *Context {
	c.Request.Params = r.pattern.Params(c.Request.Path)
	c.route = r

	return r.handler(c)
}

// Method returns the route's method filter.
func (r *Route) Method() Method {
	return r.method
}

// Template returns the path template the route was registered with.
func (r *Route) Template() string {
	return r.template
}

// Pattern returns the compiled path pattern.
func (r *Route) Pattern() *Pattern {
	return r.pattern
}

// ParamNames returns the placeholder names of the template.
func (r *Route) ParamNames() []string {
	return r.pattern.ParamNames()
}

// Handler returns the route handler.
func (r *Route) Handler() HandlerFunc {
	return r.handler
}

// Name returns the route name, if any.
func (r *Route) Name() string {
	return r.name
}

// Enabled reports whether the route takes part in dispatch.
func (r *Route) Enabled() bool {
	return !r.disabled.Load()
}

// Enable puts a disabled route back into dispatch at its original position.
func (r *Route) Enable() *Route {
	r.disabled.Store(false)
	return r
}

// Disable removes the route from dispatch without changing route order.
func (r *Route) Disable() *Route {
	r.disabled.Store(true)
	return r
}
