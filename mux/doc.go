// Package mux implements an ordered chain router: every registered route
// whose method filter and path pattern accept a request is invoked, in
// registration order, with a shared request context.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics, successor to RFC 7231)
//   - RFC 3986 (URIs, dot segment removal)
//
// # Router
//
// Create a router and register handlers. A handler receives a *Context and
// returns the context the next eligible route will see:
//
//	r := mux.NewRouter()
//	r.MustRegister(authenticate, mux.MethodAll, "")
//	r.MustRegister(showUser, mux.MethodGet, "/user/[id]")
//	r.MustRegister(updateUser, mux.MethodPut, "/user/[id]")
//
// Routes registered for MethodAll with an empty template run for every
// request and act as middleware for the routes after them.
//
// # Path Templates
//
// A template is a literal path with bracketed placeholders. Each [name]
// captures one or more characters:
//
//	Compile("/path/[a]/[b]") // ^/path/(.+)/(.+)$, [a b]
//
// A template starting with ^ or containing one of \ ( ) $ + . * outside of
// placeholders is a raw regular expression and is used as is:
//
//	Compile(`^/path/(\d+)/(.+)$`) // no placeholder names
//
// Patterns always match the whole request path. An empty template matches
// any path.
//
// Captured values are available to the handler of the matching route:
//
//	func showUser(c *mux.Context) *mux.Context {
//		id, _ := c.Request.Param("id")
//		c.Response.SendJSON(http.StatusOK, lookup(id))
//		return c
//	}
//
// # Chain Control
//
// Dispatch runs the chain to completion unless a handler stops it. A handler
// stops the chain explicitly:
//
//	return c.Halt()          // done, no error
//	return c.Fail(err)       // done, Dispatch returns err
//
// Writing a response does not stop the chain. When no route is eligible,
// Dispatch returns a *RouteNotFoundError; errors.Is(err, ErrRouteNotFound)
// reports true for it.
//
// # Properties
//
// Each context carries a Properties bag for passing data along the chain.
// Values keep their stored type and reads never convert:
//
//	c.Properties.Set("Token", token)
//	token, err := c.Properties.String("Token")
//	user, err := mux.GetAs[*User](c.Properties, "User")
//
// A missing key yields ErrPropertyNotFound and a type mismatch yields
// ErrPropertyType, both wrapped in a *PropertyError.
//
// # Handler Types
//
// Methods of a type can be registered together. A method is eligible when
// it has the signature func(*mux.Context) *mux.Context. The type lists its
// routes with RouteMarkers and may embed Resource to set a base path:
//
//	type Users struct {
//		mux.Resource `vine:"base=/users"`
//	}
//
//	func (Users) RouteMarkers() mux.Markers {
//		return mux.Markers{
//			"List": {mux.Mark(mux.MethodGet, "")},
//			"Show": {mux.Mark(mux.MethodGet, "/[id]")},
//		}
//	}
//
//	r.RegisterType(reflect.TypeOf(Users{}))
//
// The implicit tag option registers eligible methods without markers for
// all methods on the base path. RegisterValue uses a configured value as the
// receiver. RegisterTarget registers a whole ScanTarget and reports the
// errors of every type at once.
//
// # Route Table
//
// RouteTable and WriteRouteTable describe the registered routes in
// evaluation order, as YAML or JSON.
//
// # Concurrency
//
// Registration and dispatch may run concurrently: Dispatch works on a
// snapshot of the routes taken when it starts. Handlers registered through
// a handler type share one receiver and must be safe for concurrent use.
package mux
