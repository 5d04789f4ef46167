package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"github.com/vitalvas/vine/config"
	"github.com/vitalvas/vine/metrics"
	"github.com/vitalvas/vine/mux"
)

// Build information, set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "vine",
		Usage:   "embeddable HTTP routing server",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"VINE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			routesCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(config.WithConfigFile(c.String("config")))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start every configured server and run until interrupted",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			logger := cfg.Logger()

			// gatherer must stay a nil interface while metrics are disabled.
			var (
				rec      *metrics.Recorder
				gatherer prometheus.Gatherer
			)
			if cfg.Metrics.Enabled {
				registry := prometheus.NewRegistry()
				rec = metrics.New(
					metrics.WithRegistry(registry),
					metrics.WithNamespace(cfg.Metrics.Namespace),
				)
				gatherer = registry
			}

			router, err := newRouter(routerOptions{
				metricsPath: cfg.Metrics.Path,
				gatherer:    gatherer,
			})
			if err != nil {
				return err
			}

			cl, err := cfg.BuildCluster(config.Deps{
				Router:  router,
				Logger:  logger,
				Metrics: rec,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting vine", "version", version, "servers", cl.Names())

			return cl.Run(ctx)
		},
	}
}

func routesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "print the route table in evaluation order",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: yaml or json",
				Value:   mux.FormatYAML,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			var gatherer prometheus.Gatherer
			if cfg.Metrics.Enabled {
				gatherer = prometheus.NewRegistry()
			}

			router, err := newRouter(routerOptions{
				metricsPath: cfg.Metrics.Path,
				gatherer:    gatherer,
			})
			if err != nil {
				return err
			}

			return router.WriteRouteTable(c.App.Writer, c.String("format"))
		},
	}
}
