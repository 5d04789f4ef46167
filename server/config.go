package server

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/vitalvas/vine/handlers"
	"github.com/vitalvas/vine/mux"
)

// Protocol selects the transport a server speaks.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
	// ProtocolH2C serves HTTP/2 without TLS next to HTTP/1.1. Use it only
	// behind a trusted load balancer.
	ProtocolH2C Protocol = "h2c"
)

// ParseProtocol returns the protocol named s. An empty string is http.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(s); p {
	case "":
		return ProtocolHTTP, nil
	case ProtocolHTTP, ProtocolHTTPS, ProtocolH2C:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidProtocol, s)
	}
}

const (
	DefaultHost              = "localhost"
	DefaultPort              = 1234
	DefaultName              = "vine"
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// ServerName identifies the server in logs and metrics. Defaults to
	// "vine".
	ServerName string

	// Protocol defaults to ProtocolHTTP.
	Protocol Protocol

	// Host is the interface to bind. Defaults to "localhost".
	Host string

	// Port is the TCP port to bind. Defaults to 1234 when zero; use
	// SetPort(0) to bind an ephemeral port.
	Port int

	// Router dispatches the requests. A server without a router answers
	// every request that is not a public file with 404.
	Router *mux.Router

	// PublicFolder is a directory whose files are served before the
	// router is consulted. Empty disables it.
	PublicFolder string

	// CertFile and KeyFile hold the PEM certificate and key for https.
	CertFile string
	KeyFile  string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// ShutdownTimeout bounds the graceful part of Stop. Connections still
	// active afterwards are closed. Defaults to 5 seconds.
	ShutdownTimeout time.Duration

	// MaxConnections caps concurrently accepted connections. Zero means
	// unlimited.
	MaxConnections int

	// RequestID controls the request ID assigned to every request.
	RequestID handlers.RequestIDConfig

	// Logger receives lifecycle and request logs. Defaults to a logger
	// that discards everything.
	Logger hclog.Logger

	// Metrics receives request metrics when set.
	Metrics Recorder
}

func (c Config) withDefaults() Config {
	if c.ServerName == "" {
		c.ServerName = DefaultName
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolHTTP
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}

	return c
}
