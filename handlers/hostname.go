package handlers

import (
	"os"

	"github.com/vitalvas/vine/mux"
)

// HostnameConfig configures the Hostname handler behaviour.
type HostnameConfig struct {
	// Hostname is the value written to the X-Server-Hostname response
	// header. Resolution order: Hostname field, then HostnameEnv
	// environment variable, then os.Hostname.
	Hostname string

	// HostnameEnv is a list of environment variable names checked in
	// order (e.g. ["POD_NAME", "HOSTNAME"]). The first non-empty
	// value is used. Only consulted when Hostname is empty.
	HostnameEnv []string
}

// ResolveHostname returns the hostname described by cfg.
func (cfg HostnameConfig) ResolveHostname() (string, error) {
	if cfg.Hostname != "" {
		return cfg.Hostname, nil
	}

	for _, env := range cfg.HostnameEnv {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			return v, nil
		}
	}

	return os.Hostname()
}

// Hostname returns a handler that sets the X-Server-Hostname response
// header. The hostname is resolved once when the handler is created. It
// returns an error if the hostname cannot be determined.
func Hostname(cfg HostnameConfig) (mux.HandlerFunc, error) {
	hostname, err := cfg.ResolveHostname()
	if err != nil {
		return nil, err
	}

	return func(c *mux.Context) *mux.Context {
		c.Response.Header().Set("X-Server-Hostname", hostname)
		return c
	}, nil
}
