package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/vitalvas/vine/handlers"
	"github.com/vitalvas/vine/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/net/netutil"
)

// Hook is a lifecycle callback. Hooks run synchronously while the server
// holds its transition lock, so they must not call Start or Stop.
//
// Before-hooks run ahead of the state change. After-hooks run once the new
// state is published but before the lock is released: concurrent Start and
// Stop calls wait for them, while State may already report the new state.
type Hook func(*Server)

type hooks struct {
	beforeStart []Hook
	afterStart  []Hook
	beforeStop  []Hook
	afterStop   []Hook
}

// Server binds a router to a listening socket and drives its lifecycle.
type Server struct {
	// mu serializes Start and Stop.
	mu    sync.Mutex
	state atomic.Int32

	cfgMu sync.RWMutex
	cfg   Config
	addr  string

	hooksMu sync.Mutex
	hooks   hooks

	httpServer *http.Server
	serveDone  chan struct{}
	cancelBase context.CancelFunc

	active atomic.Pointer[requestHandler]

	// wrapListener, when set, wraps the bound listener before serving.
	wrapListener func(net.Listener) net.Listener
}

// New returns a stopped server configured by cfg.
func New(cfg Config) *Server {
	return &Server{cfg: cfg.withDefaults()}
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
}

// Name returns the configured server name.
func (s *Server) Name() string {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.ServerName
}

// Protocol returns the configured protocol.
func (s *Server) Protocol() Protocol {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.Protocol
}

// Host returns the configured bind host.
func (s *Server) Host() string {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.Host
}

// Port returns the configured bind port.
func (s *Server) Port() int {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.Port
}

// Router returns the configured router.
func (s *Server) Router() *mux.Router {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.Router
}

// PublicFolder returns the configured public folder.
func (s *Server) PublicFolder() string {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.PublicFolder
}

// Addr returns the bound listener address while the server is started,
// and an empty string otherwise.
func (s *Server) Addr() string {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.addr
}

func (s *Server) logger() hclog.Logger {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.Logger
}

// update applies fn to the configuration if the server is stopped.
func (s *Server) update(op string, fn func(*Config) error) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	if st := s.State(); st != Stopped {
		return &StateError{Op: op, State: st}
	}

	return fn(&s.cfg)
}

// SetProtocol changes the protocol. The server must be stopped.
func (s *Server) SetProtocol(p Protocol) error {
	return s.update("set protocol", func(cfg *Config) error {
		parsed, err := ParseProtocol(string(p))
		if err != nil {
			return err
		}

		cfg.Protocol = parsed

		return nil
	})
}

// SetHost changes the bind host. The server must be stopped.
func (s *Server) SetHost(host string) error {
	return s.update("set host", func(cfg *Config) error {
		cfg.Host = host
		return nil
	})
}

// SetPort changes the bind port. Port 0 binds an ephemeral port. The
// server must be stopped.
func (s *Server) SetPort(port int) error {
	return s.update("set port", func(cfg *Config) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: %d", ErrInvalidPort, port)
		}

		cfg.Port = port

		return nil
	})
}

// SetRouter changes the router. The server must be stopped.
func (s *Server) SetRouter(r *mux.Router) error {
	return s.update("set router", func(cfg *Config) error {
		cfg.Router = r
		return nil
	})
}

// SetPublicFolder changes the public folder. The server must be stopped.
func (s *Server) SetPublicFolder(dir string) error {
	return s.update("set public folder", func(cfg *Config) error {
		cfg.PublicFolder = dir
		return nil
	})
}

// OnBeforeStart registers a hook run by Start before the state leaves
// Stopped.
func (s *Server) OnBeforeStart(h Hook) {
	s.addHook(&s.hooks.beforeStart, h)
}

// OnAfterStart registers a hook run by Start once the server is Started.
func (s *Server) OnAfterStart(h Hook) {
	s.addHook(&s.hooks.afterStart, h)
}

// OnBeforeStop registers a hook run by Stop while the server is still
// Started.
func (s *Server) OnBeforeStop(h Hook) {
	s.addHook(&s.hooks.beforeStop, h)
}

// OnAfterStop registers a hook run by Stop once the server is Stopped.
func (s *Server) OnAfterStop(h Hook) {
	s.addHook(&s.hooks.afterStop, h)
}

func (s *Server) addHook(list *[]Hook, h Hook) {
	if h == nil {
		return
	}

	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()

	*list = append(*list, h)
}

func (s *Server) runHooks(list *[]Hook) {
	s.hooksMu.Lock()
	snapshot := append([]Hook(nil), *list...)
	s.hooksMu.Unlock()

	for _, h := range snapshot {
		h(s)
	}
}

// Start binds the listener and launches the accept loop. It returns once
// the server is Started, or with the bind error after rolling back to
// Stopped. Starting a server that is not stopped returns ErrAlreadyRunning.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.State(); st != Stopped {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyRunning, s.Name(), st)
	}

	s.runHooks(&s.hooks.beforeStart)
	s.setState(Starting)

	s.cfgMu.RLock()
	cfg := s.cfg
	s.cfgMu.RUnlock()

	log := cfg.Logger.With("server", cfg.ServerName)

	rh, err := newRequestHandler(cfg)
	if err != nil {
		s.setState(Stopped)
		return err
	}

	srv, ln, err := s.listen(ctx, cfg, rh)
	if err != nil {
		s.setState(Stopped)
		log.Error("failed to bind", "protocol", cfg.Protocol, "host", cfg.Host, "port", cfg.Port, "error", err)

		return err
	}

	if s.wrapListener != nil {
		ln = s.wrapListener(ln)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	done := make(chan struct{})

	s.httpServer = srv
	s.serveDone = done
	s.cancelBase = cancel
	s.active.Store(rh)

	s.cfgMu.Lock()
	s.addr = ln.Addr().String()
	s.cfgMu.Unlock()

	go s.serve(srv, ln, done, log)

	s.setState(Started)
	log.Info("server started", "protocol", cfg.Protocol, "addr", ln.Addr().String())

	s.runHooks(&s.hooks.afterStart)

	return nil
}

func (s *Server) listen(ctx context.Context, cfg Config, handler http.Handler) (*http.Server, net.Listener, error) {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          cfg.Logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	var tlsConfig *tls.Config

	switch cfg.Protocol {
	case ProtocolHTTPS:
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("server: load key pair: %w", err)
		}

		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		srv.TLSConfig = tlsConfig

		if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
			return nil, nil, fmt.Errorf("server: configure http2: %w", err)
		}

	case ProtocolH2C:
		srv.Handler = h2c.NewHandler(handler, &http2.Server{})
	}

	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, nil, fmt.Errorf("server: listen: %w", err)
	}

	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	if tlsConfig != nil {
		ln = tls.NewListener(ln, srv.TLSConfig)
	}

	return srv, ln, nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener, done chan struct{}, log hclog.Logger) {
	defer close(done)

	err := srv.Serve(ln)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}

	log.Error("accept loop exited", "error", err)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()

		if err := s.stop(ctx, srv); err != nil && !errors.Is(err, ErrAlreadyStopped) {
			log.Error("failed to stop after accept loop exit", "error", err)
		}
	}()
}

func (s *Server) shutdownTimeout() time.Duration {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return s.cfg.ShutdownTimeout
}

// Stop closes the listener, waits for in-flight requests until ctx is done
// or the shutdown timeout passes, then closes the remaining connections.
// Request contexts are cancelled only once that grace period runs out.
// Stopping a server that is not started returns ErrAlreadyStopped.
func (s *Server) Stop(ctx context.Context) error {
	return s.stop(ctx, nil)
}

// stop stops the server. When expect is set, only that incarnation of the
// server is stopped.
func (s *Server) stop(ctx context.Context, expect *http.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != Started || (expect != nil && s.httpServer != expect) {
		return ErrAlreadyStopped
	}

	s.runHooks(&s.hooks.beforeStop)
	s.setState(Stopping)

	log := s.logger().With("server", s.Name())
	log.Info("stopping server", "addr", s.Addr())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout())
	defer cancel()

	var stopErr error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown incomplete, closing connections", "error", err)

		s.cancelBase()
		if err := s.httpServer.Close(); err != nil {
			stopErr = fmt.Errorf("server: close: %w", err)
		}
	}

	<-s.serveDone
	s.cancelBase()

	s.httpServer = nil
	s.serveDone = nil
	s.cancelBase = nil
	s.active.Store(nil)

	s.cfgMu.Lock()
	s.addr = ""
	s.cfgMu.Unlock()

	s.setState(Stopped)
	log.Info("server stopped")

	s.runHooks(&s.hooks.afterStop)

	return stopErr
}

// ServeHTTP handles one request the way the running server does. It may
// also be used without Start, for example with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rh := s.active.Load(); rh != nil {
		rh.ServeHTTP(w, r)
		return
	}

	s.cfgMu.RLock()
	cfg := s.cfg
	s.cfgMu.RUnlock()

	rh, err := newRequestHandler(cfg)
	if err != nil {
		cfg.Logger.Error("failed to build request handler", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	rh.ServeHTTP(w, r)
}

// publicFiles returns the static file handler for dir, or nil if dir is
// empty.
func publicFiles(dir string) (mux.HandlerFunc, error) {
	if dir == "" {
		return nil, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("server: public folder: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("server: public folder %q is not a directory", dir)
	}

	return handlers.StaticFiles(handlers.StaticFilesConfig{FS: os.DirFS(dir)})
}
