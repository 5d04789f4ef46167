package main

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitalvas/vine/handlers"
	"github.com/vitalvas/vine/metrics"
	"github.com/vitalvas/vine/mux"
	"golang.org/x/time/rate"
)

type routerOptions struct {
	// metricsPath is served when gatherer is set.
	metricsPath string
	gatherer    prometheus.Gatherer
}

// newRouter builds the route chain served by every configured server.
func newRouter(opts routerOptions) (*mux.Router, error) {
	r := mux.NewRouter()

	security, err := handlers.SecurityHeaders(handlers.SecurityHeadersConfig{})
	if err != nil {
		return nil, err
	}

	hostname, err := handlers.Hostname(handlers.HostnameConfig{})
	if err != nil {
		return nil, err
	}

	limit, err := handlers.RateLimit(handlers.RateLimitConfig{
		Rate:        rate.Limit(50),
		Burst:       100,
		IdleTimeout: 5 * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	sizeLimit, err := handlers.RequestSizeLimit(handlers.RequestSizeLimitConfig{MaxBytes: 1 << 20})
	if err != nil {
		return nil, err
	}

	chain := []struct {
		name    string
		handler mux.HandlerFunc
	}{
		{"security-headers", security},
		{"hostname", hostname},
		{"rate-limit", limit},
		{"request-size-limit", sizeLimit},
	}

	for _, h := range chain {
		if _, err := r.RegisterNamed(h.name, h.handler, mux.MethodAll, ""); err != nil {
			return nil, err
		}
	}

	if opts.gatherer != nil {
		if _, err := r.RegisterNamed("metrics", metrics.Handler(opts.gatherer), mux.MethodGet, opts.metricsPath); err != nil {
			return nil, err
		}
	}

	table, err := handlers.RouteTable(r, mux.FormatJSON)
	if err != nil {
		return nil, err
	}

	if _, err := r.RegisterNamed("route-table", table, mux.MethodGet, "/_routes"); err != nil {
		return nil, err
	}

	if _, err := r.RegisterTarget(mux.NewScanTarget("vine").
		AddValues(newStatusResource(time.Now())).
		AddTypes(reflect.TypeOf(greeter{}))); err != nil {
		return nil, fmt.Errorf("register handlers: %w", err)
	}

	// Every request reaches some route through the chain above, so a
	// request no handler answered ends here.
	if _, err := r.RegisterNamed("not-found", notFound, mux.MethodAll, ""); err != nil {
		return nil, err
	}

	return r, nil
}

func notFound(c *mux.Context) *mux.Context {
	c.Response.SendString(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	return c.Halt()
}

type statusResource struct {
	mux.Resource `vine:"base=/status"`

	started time.Time
}

func newStatusResource(started time.Time) *statusResource {
	return &statusResource{started: started}
}

func (*statusResource) RouteMarkers() mux.Markers {
	return mux.Markers{
		"Health": {mux.Mark(mux.MethodGet, "/health"), mux.Mark(mux.MethodHead, "/health")},
		"Uptime": {mux.Mark(mux.MethodGet, "/uptime")},
	}
}

func (*statusResource) Health(c *mux.Context) *mux.Context {
	c.Response.SendJSON(http.StatusOK, map[string]string{"status": "ok"})
	return c.Halt()
}

func (s *statusResource) Uptime(c *mux.Context) *mux.Context {
	c.Response.SendJSON(http.StatusOK, map[string]string{
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})

	return c.Halt()
}

type greeter struct {
	mux.Resource `vine:"base=/hello"`
}

func (greeter) RouteMarkers() mux.Markers {
	return mux.Markers{
		"Greet":   {mux.Mark(mux.MethodGet, "/[name]")},
		"Welcome": {mux.Mark(mux.MethodPost, "")},
	}
}

func (greeter) Greet(c *mux.Context) *mux.Context {
	name, _ := c.Request.Param("name")
	c.Response.SendString(http.StatusOK, "Hello, "+name+"!")

	return c.Halt()
}

type welcomeRequest struct {
	Name string `json:"name"`
}

// Welcome greets the name posted as {"name": "..."}.
func (greeter) Welcome(c *mux.Context) *mux.Context {
	var req welcomeRequest
	if err := c.Request.BindJSON(&req); err != nil || req.Name == "" {
		c.Response.SendJSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
		return c.Halt()
	}

	c.Response.SendJSON(http.StatusOK, map[string]string{"greeting": "Hello, " + req.Name + "!"})

	return c.Halt()
}
