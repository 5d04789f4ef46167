// Package handlers provides ready-made chain handlers for the mux router.
//
// Each constructor returns a mux.HandlerFunc. Most are registered for all
// methods with an empty template at the front of the chain, so they run
// before the routes that answer the request. A handler that answers the
// request itself halts the chain.
//
//	r := mux.NewRouter()
//
//	auth, err := handlers.BasicAuth(handlers.BasicAuthConfig{
//	    Realm: "My App",
//	    Credentials: map[string]string{
//	        "admin": "$2a$10$...",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r.MustRegister(handlers.RequestID(handlers.RequestIDConfig{}), mux.MethodAll, "")
//	r.MustRegister(auth, mux.MethodAll, "/admin/[rest]")
//	r.MustRegister(showDashboard, mux.MethodGet, "/admin/dashboard")
//
// # Request Data
//
// RequestID, BasicAuth and MethodOverride rewrite the request or store
// values in the context properties for later routes. RequestIDFromContext
// and the PropertyUser key read them back.
//
// # Guards
//
// BasicAuth (RFC 7617) answers 401, RequestSizeLimit 413 and RateLimit 429
// before halting the chain. RateLimit keeps one token bucket per client.
//
// # Response Headers
//
// CORS, SecurityHeaders, CacheControl and Hostname set response headers.
// CacheControl decides when the status line is sent, so it sees the
// Content-Type chosen by later routes.
//
// # Content
//
// StaticFiles serves files from an fs.FS and RouteTable serves the router's
// route table as YAML or JSON. StaticFiles lets the chain continue when no
// file matches.
package handlers
