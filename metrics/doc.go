// Package metrics exports server and cluster metrics to Prometheus.
//
//	registry := prometheus.NewRegistry()
//	rec := metrics.New(metrics.WithRegistry(registry))
//
//	srv := server.New(server.Config{Router: r, Metrics: rec})
//	c := cluster.New(cluster.WithGauge(rec.RunningMembers()))
//
//	r.MustRegister(metrics.Handler(registry), mux.MethodGet, "/metrics")
package metrics
