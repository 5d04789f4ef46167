package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitalvas/vine/mux"
	"github.com/vitalvas/vine/server"
)

var _ server.Recorder = (*Recorder)(nil)

// methodOther replaces request methods outside the route method enumeration
// to bound the label cardinality.
const methodOther = "OTHER"

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "vine").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vine",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder collects request and cluster metrics. It implements
// server.Recorder, and RunningMembers can be handed to a cluster.
type Recorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
	handlerFailures *prometheus.CounterVec
	runningMembers  prometheus.Gauge
}

// New registers the metrics and returns a recorder. Registering twice on
// the same registry panics.
func New(opts ...Option) *Recorder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(cfg.Registry)

	return &Recorder{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests handled",
			ConstLabels: cfg.ConstLabels,
		}, []string{"server", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"server", "method"}),

		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of HTTP requests currently being handled",
			ConstLabels: cfg.ConstLabels,
		}, []string{"server"}),

		handlerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "handler_failures_total",
			Help:        "Total number of failed or panicking handler chains",
			ConstLabels: cfg.ConstLabels,
		}, []string{"server", "reason"}),

		runningMembers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "cluster_members_running",
			Help:        "Number of cluster members in the started state",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// RequestStarted records a request entering the server.
func (r *Recorder) RequestStarted(server, _ string) {
	r.inFlight.WithLabelValues(server).Inc()
}

// RequestFinished records a completed request.
func (r *Recorder) RequestFinished(server, method string, status int, duration time.Duration) {
	method = methodLabel(method)

	r.inFlight.WithLabelValues(server).Dec()
	r.requestsTotal.WithLabelValues(server, method, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(server, method).Observe(duration.Seconds())
}

// HandlerFailed records a handler chain that panicked or failed.
func (r *Recorder) HandlerFailed(server, reason string) {
	r.handlerFailures.WithLabelValues(server, reason).Inc()
}

// RunningMembers returns the gauge of started cluster members.
func (r *Recorder) RunningMembers() prometheus.Gauge {
	return r.runningMembers
}

func methodLabel(method string) string {
	if m := mux.Method(method); m != mux.MethodAll && m.Valid() {
		return method
	}

	return methodOther
}

// Handler returns a chain handler that answers with the metrics gathered
// from g and halts. Register it on the metrics path:
//
//	r.MustRegister(metrics.Handler(registry), mux.MethodGet, "/metrics")
func Handler(g prometheus.Gatherer) mux.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})

	return func(c *mux.Context) *mux.Context {
		h.ServeHTTP(c.Response, c.Request.Raw)
		return c.Halt()
	}
}
