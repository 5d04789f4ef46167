package handlers

import (
	"net/http"

	"github.com/vitalvas/vine/mux"
)

func okHandler(c *mux.Context) *mux.Context {
	c.Response.WriteHeader(http.StatusOK)
	return c
}

// chainRouter registers h for every request followed by final on path.
func chainRouter(h, final mux.HandlerFunc, method mux.Method, path string) *mux.Router {
	r := mux.NewRouter()
	r.MustRegister(h, mux.MethodAll, "")
	r.MustRegister(final, method, path)

	return r
}
