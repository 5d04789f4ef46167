package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/vitalvas/vine/handlers"
	"github.com/vitalvas/vine/mux"
)

// requestHandler is the per-request pipeline of a server. It is built from
// a configuration snapshot when the server starts.
type requestHandler struct {
	name      string
	router    *mux.Router
	static    mux.HandlerFunc
	requestID handlers.RequestIDConfig
	logger    hclog.Logger
	metrics   Recorder
}

func newRequestHandler(cfg Config) (*requestHandler, error) {
	static, err := publicFiles(cfg.PublicFolder)
	if err != nil {
		return nil, err
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}

	return &requestHandler{
		name:      cfg.ServerName,
		router:    cfg.Router,
		static:    static,
		requestID: cfg.RequestID,
		logger:    cfg.Logger.With("server", cfg.ServerName),
		metrics:   metrics,
	}, nil
}

func (h *requestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	method := r.Method

	h.metrics.RequestStarted(h.name, method)

	c := mux.NewContext(w, r, nil)
	id := h.requestID.Assign(c)

	log := h.logger.With("request_id", id, "method", method, "path", c.Request.Path)
	c.SetLogger(log)

	defer func() {
		rec := recover()
		if rec == http.ErrAbortHandler {
			h.metrics.RequestFinished(h.name, method, c.Response.Status(), time.Since(start))
			panic(rec)
		}

		if rec != nil {
			log.Error("handler panic", "panic", rec, "stack", string(debug.Stack()))
			h.metrics.HandlerFailed(h.name, "panic")
			mux.WriteError(c, fmt.Errorf("server: handler panic: %v", rec))
		}

		status := c.Response.Status()
		elapsed := time.Since(start)

		h.metrics.RequestFinished(h.name, method, status, elapsed)
		log.Debug("request finished", "status", status, "duration", elapsed)
	}()

	c = h.dispatch(c)
}

// dispatch runs the public folder and the router for c and writes the
// error response if needed. It returns the context the chain ended with.
func (h *requestHandler) dispatch(c *mux.Context) *mux.Context {
	if h.static != nil {
		c = h.static(c)
		if c.Halted() {
			return c
		}
	}

	if h.router == nil {
		mux.WriteError(c, &mux.RouteNotFoundError{Method: c.Request.Method, Path: c.Request.Path})
		return c
	}

	out, err := h.router.Dispatch(c)
	if out != nil {
		c = out
	}

	switch {
	case err == nil:
	case errors.Is(err, mux.ErrRouteNotFound):
		c.Logger().Debug("no route matched")
	default:
		c.Logger().Error("handler failed", "error", err)
		h.metrics.HandlerFailed(h.name, "error")
	}

	mux.WriteError(c, err)

	return c
}
