package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/vitalvas/vine/handlers"
	"github.com/vitalvas/vine/server"
)

var (
	ErrInvalidLogLevel  = errors.New("config: invalid log level")
	ErrInvalidLogFormat = errors.New("config: invalid log format")
	ErrMissingKeyPair   = errors.New("config: https requires cert_file and key_file")
)

// Config is the configuration of a vine process: the logger, the cluster
// and every named server in it.
type Config struct {
	Log     LogConfig               `koanf:"log"`
	Cluster ClusterConfig           `koanf:"cluster"`
	Metrics MetricsConfig           `koanf:"metrics"`
	Servers map[string]ServerConfig `koanf:"servers"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error or off.
	Level string `koanf:"level"`

	// Format is text or json.
	Format string `koanf:"format"`
}

// ClusterConfig configures the cluster.
type ClusterConfig struct {
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Path      string `koanf:"path"`
}

// ServerConfig configures one named server. Zero values take the server
// defaults.
type ServerConfig struct {
	Protocol          string        `koanf:"protocol"`
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	PublicFolder      string        `koanf:"public_folder"`
	CertFile          string        `koanf:"cert_file"`
	KeyFile           string        `koanf:"key_file"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	MaxConnections    int           `koanf:"max_connections"`
	RequestIDHeader   string        `koanf:"request_id_header"`
	TrustRequestID    bool          `koanf:"trust_request_id"`
}

// DefaultServerName names the server created when the configuration
// declares none.
const DefaultServerName = "default"

// defaults returns the default values.
func defaults() map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"cluster": map[string]any{
			"shutdown_timeout": "10s",
		},
		"metrics": map[string]any{
			"enabled":   false,
			"namespace": "vine",
			"path":      "/metrics",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var merr *multierror.Error

	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		merr = multierror.Append(merr, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		merr = multierror.Append(merr, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format))
	}

	for _, name := range c.ServerNames() {
		if err := c.Servers[name].validate(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("server %q: %w", name, err))
		}
	}

	return merr.ErrorOrNil()
}

func (s ServerConfig) validate() error {
	protocol, err := server.ParseProtocol(s.Protocol)
	if err != nil {
		return err
	}

	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: %d", server.ErrInvalidPort, s.Port)
	}

	if protocol == server.ProtocolHTTPS && (s.CertFile == "" || s.KeyFile == "") {
		return ErrMissingKeyPair
	}

	return nil
}

// ServerNames returns the configured server names in sorted order.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Logger builds the process logger.
func (c *Config) Logger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "vine",
		Level:      hclog.LevelFromString(c.Log.Level),
		JSONFormat: c.Log.Format == "json",
		Output:     os.Stderr,
	})
}

// ServerConfig converts the settings of one server. The name becomes the
// server name.
func (s ServerConfig) ServerConfig(name string) (server.Config, error) {
	if err := s.validate(); err != nil {
		return server.Config{}, err
	}

	protocol, _ := server.ParseProtocol(s.Protocol)

	return server.Config{
		ServerName:        name,
		Protocol:          protocol,
		Host:              s.Host,
		Port:              s.Port,
		PublicFolder:      s.PublicFolder,
		CertFile:          s.CertFile,
		KeyFile:           s.KeyFile,
		ReadHeaderTimeout: s.ReadHeaderTimeout,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
		ShutdownTimeout:   s.ShutdownTimeout,
		MaxConnections:    s.MaxConnections,
		RequestID: handlers.RequestIDConfig{
			HeaderName:    s.RequestIDHeader,
			TrustIncoming: s.TrustRequestID,
		},
	}, nil
}
