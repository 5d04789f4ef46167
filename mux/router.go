package mux

import (
	"errors"
	"net/http"
	"sync"
)

// Router is an ordered collection of routes. Dispatch evaluates routes in
// registration order and runs every eligible one, so earlier routes act as
// middleware for later ones.
//
//	r := mux.NewRouter()
//	r.MustRegister(auth, mux.MethodAll, "")
//	r.MustRegister(getUser, mux.MethodGet, "/user/[id]")
//	srv := server.New(server.Config{Router: r})
//
// Registration is safe while dispatching: Dispatch works on a snapshot of
// the route list taken when it starts.
type Router struct {
	mu     sync.RWMutex
	routes []*Route
	named  map[string]*Route
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		named: make(map[string]*Route),
	}
}

// Register compiles template and appends a route for handler. An empty
// method means MethodAll and an empty template matches every path.
func (r *Router) Register(handler HandlerFunc, method Method, template string) (*Route, error) {
	return r.RegisterNamed("", handler, method, template)
}

// RegisterNamed is Register with a route name that can be looked up with Lookup.
func (r *Router) RegisterNamed(name string, handler HandlerFunc, method Method, template string) (*Route, error) {
	route, err := newRoute(handler, method, template)
	if err != nil {
		return nil, err
	}
	route.name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if name != "" {
		if _, ok := r.named[name]; ok {
			return nil, &ConfigError{Reason: "route name " + name + " already registered"}
		}
		r.named[name] = route
	}
	r.routes = append(r.routes, route)

	return route, nil
}

// MustRegister is like Register but panics if the route is invalid.
func (r *Router) MustRegister(handler HandlerFunc, method Method, template string) *Route {
	route, err := r.Register(handler, method, template)
	if err != nil {
		panic(err)
	}
	return route
}

// Handle registers handler for every method on template.
func (r *Router) Handle(template string, handler HandlerFunc) (*Route, error) {
	return r.Register(handler, MethodAll, template)
}

// Get registers handler for GET requests on template.
func (r *Router) Get(template string, handler HandlerFunc) (*Route, error) {
	return r.Register(handler, MethodGet, template)
}

// Post registers handler for POST requests on template.
func (r *Router) Post(template string, handler HandlerFunc) (*Route, error) {
	return r.Register(handler, MethodPost, template)
}

// Put registers handler for PUT requests on template.
func (r *Router) Put(template string, handler HandlerFunc) (*Route, error) {
	return r.Register(handler, MethodPut, template)
}

// Patch registers handler for PATCH requests on template.
func (r *Router) Patch(template string, handler HandlerFunc) (*Route, error) {
	return r.Register(handler, MethodPatch, template)
}

// Delete registers handler for DELETE requests on template.
func (r *Router) Delete(template string, handler HandlerFunc) (*Route, error) {
	return r.Register(handler, MethodDelete, template)
}

// appendRoutes adds already validated routes in one step.
func (r *Router) appendRoutes(routes []*Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, route := range routes {
		if route.name == "" {
			continue
		}
		if _, ok := r.named[route.name]; ok {
			return &ConfigError{Reason: "route name " + route.name + " already registered"}
		}
	}

	for _, route := range routes {
		if route.name != "" {
			r.named[route.name] = route
		}
	}
	r.routes = append(r.routes, routes...)

	return nil
}

// Unregister removes route. The relative order of the remaining routes is
// unchanged. It reports whether the route was registered.
func (r *Router) Unregister(route *Route) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rt := range r.routes {
		if rt != route {
			continue
		}

		routes := make([]*Route, 0, len(r.routes)-1)
		routes = append(routes, r.routes[:i]...)
		routes = append(routes, r.routes[i+1:]...)
		r.routes = routes

		if route.name != "" {
			delete(r.named, route.name)
		}
		return true
	}

	return false
}

// Lookup returns the route registered under name.
func (r *Router) Lookup(name string) *Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.named[name]
}

// Routes returns the registered routes in evaluation order.
func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]*Route, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// Len returns the number of registered routes.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.routes)
}

// Dispatch runs c through every eligible route in registration order. The
// context returned by one route is the input of the next eligible one.
// Dispatch stops after a route halts or fails the context.
//
// It returns the final context together with the error recorded by Fail,
// ErrNilContext if a handler returned nil, or a *RouteNotFoundError when
// no route was eligible.
func (r *Router) Dispatch(c *Context) (*Context, error) {
	routes := r.Routes()
	log := c.Logger()

	log.Trace("dispatch started", "method", c.Request.Method, "path", c.Request.Path, "routes", len(routes))

	var invoked int
	for i, route := range routes {
		if !route.Matches(c) {
			continue
		}
		invoked++

		log.Debug("invoking route", "index", i, "method", route.method, "template", route.template, "name", route.name)

		next := route.Invoke(c)
		if next == nil {
			log.Error("route returned nil context", "index", i, "template", route.template)
			return c, ErrNilContext
		}
		c = next
		log = c.Logger()

		if err := c.Err(); err != nil {
			log.Debug("dispatch failed", "index", i, "error", err)
			return c, err
		}
		if c.Halted() {
			log.Trace("dispatch halted", "index", i)
			break
		}
	}

	if invoked == 0 {
		return c, &RouteNotFoundError{Method: c.Request.Method, Path: c.Request.Path}
	}

	log.Trace("dispatch finished", "invoked", invoked, "status", c.Response.Status())

	return c, nil
}

// ServeHTTP dispatches the request without a logger and maps the outcome
// with WriteError. It allows a Router to be mounted on a plain net/http
// handler tree.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	c, err := r.Dispatch(NewContext(w, req, nil))
	WriteError(c, err)
}

// WriteError writes the response for a dispatch error unless the chain
// already sent one: 404 for ErrRouteNotFound and 500 for anything else.
// It does nothing when err is nil.
func WriteError(c *Context, err error) {
	if err == nil || c.Response.Written() {
		return
	}

	code := http.StatusInternalServerError
	if errors.Is(err, ErrRouteNotFound) {
		code = http.StatusNotFound
	}

	c.Response.SendString(code, http.StatusText(code))
}
