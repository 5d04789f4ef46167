// Package server binds a mux.Router to a network listener and manages its
// lifecycle.
//
// A Server moves through the states Stopped, Starting, Started and
// Stopping. Start and Stop are serialized; configuration can only change
// while the server is stopped:
//
//	r := mux.NewRouter()
//	r.MustRegister(hello, mux.MethodGet, "/hello")
//
//	srv := server.New(server.Config{Host: "0.0.0.0", Port: 8080, Router: r})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
//
// Every request gets a request ID and a logger carrying it. Files in the
// public folder are served before the router runs. Panics and handler
// errors are logged and answered with 500, a request no route accepts
// with 404.
//
// Lifecycle hooks registered with OnBeforeStart, OnAfterStart,
// OnBeforeStop and OnAfterStop run synchronously during the transition.
package server
