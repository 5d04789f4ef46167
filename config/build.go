package config

import (
	"github.com/hashicorp/go-hclog"
	"github.com/vitalvas/vine/cluster"
	"github.com/vitalvas/vine/metrics"
	"github.com/vitalvas/vine/mux"
	"github.com/vitalvas/vine/server"
)

// Deps are the runtime collaborators of the configured servers.
type Deps struct {
	// Router serves every server without an entry in Routers.
	Router *mux.Router

	// Routers maps server names to dedicated routers.
	Routers map[string]*mux.Router

	Logger hclog.Logger

	// Metrics is optional.
	Metrics *metrics.Recorder
}

// BuildCluster creates one server per configured name and adds them to a
// new cluster, in name order.
func (c *Config) BuildCluster(deps Deps) (*cluster.Cluster, error) {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	opts := []cluster.Option{
		cluster.WithLogger(logger.Named("cluster")),
		cluster.WithShutdownTimeout(c.Cluster.ShutdownTimeout),
	}
	if deps.Metrics != nil {
		opts = append(opts, cluster.WithGauge(deps.Metrics.RunningMembers()))
	}

	cl := cluster.New(opts...)

	for _, name := range c.ServerNames() {
		cfg, err := c.Servers[name].ServerConfig(name)
		if err != nil {
			return nil, err
		}

		cfg.Router = deps.Router
		if r, ok := deps.Routers[name]; ok {
			cfg.Router = r
		}

		cfg.Logger = logger.Named("server")
		if deps.Metrics != nil {
			cfg.Metrics = deps.Metrics
		}

		if err := cl.Add(name, server.New(cfg)); err != nil {
			return nil, err
		}
	}

	return cl, nil
}
