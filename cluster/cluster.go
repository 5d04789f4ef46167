package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/vitalvas/vine/server"
)

// DefaultShutdownTimeout bounds the StopAll issued by Run.
const DefaultShutdownTimeout = 10 * time.Second

// Member is an independently lifecycled unit of a cluster. *server.Server
// implements it.
type Member interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	State() server.State
}

// Gauge receives the number of started members after every StartAll and
// StopAll. A prometheus.Gauge satisfies it.
type Gauge interface {
	Set(float64)
}

// Hook is a cluster level lifecycle callback.
type Hook func(*Cluster)

type hooks struct {
	beforeStartAll []Hook
	afterStartAll  []Hook
	beforeStopAll  []Hook
	afterStopAll   []Hook
}

// Option configures a Cluster.
type Option func(*Cluster)

// WithLogger sets the cluster logger.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Cluster) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGauge reports the number of started members to g.
func WithGauge(g Gauge) Option {
	return func(c *Cluster) {
		c.gauge = g
	}
}

// WithShutdownTimeout sets how long Run waits for StopAll once its context
// is done.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Cluster) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// Cluster is a named registry of members with aggregate start and stop.
type Cluster struct {
	// opMu serializes StartAll and StopAll.
	opMu sync.Mutex

	mu      sync.RWMutex
	names   []string
	members map[string]Member

	hooksMu sync.Mutex
	hooks   hooks

	logger          hclog.Logger
	gauge           Gauge
	shutdownTimeout time.Duration
}

// New returns an empty cluster.
func New(opts ...Option) *Cluster {
	c := &Cluster{
		members:         make(map[string]Member),
		logger:          hclog.NewNullLogger(),
		shutdownTimeout: DefaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Add registers m under name.
func (c *Cluster) Add(name string, m Member) error {
	if name == "" {
		return ErrInvalidName
	}
	if m == nil {
		return fmt.Errorf("%w: %q", ErrNilMember, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.members[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	c.members[name] = m
	c.names = append(c.names, name)

	return nil
}

// Remove unregisters the member called name. A member that is not stopped
// is kept and Remove reports false.
func (c *Cluster) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.members[name]
	if !ok || m.State() != server.Stopped {
		return false
	}

	delete(c.members, name)

	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}

	return true
}

// Get returns the member called name.
func (c *Cluster) Get(name string) (Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.members[name]

	return m, ok
}

// Names returns the member names in the order they were added.
func (c *Cluster) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.names...)
}

// Len returns the number of members.
func (c *Cluster) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.names)
}

// Running returns the number of members in the Started state.
func (c *Cluster) Running() int {
	n := 0
	for _, e := range c.snapshot() {
		if e.member.State() == server.Started {
			n++
		}
	}

	return n
}

// OnBeforeStartAll registers a hook run before StartAll reaches any member.
func (c *Cluster) OnBeforeStartAll(h Hook) {
	c.addHook(&c.hooks.beforeStartAll, h)
}

// OnAfterStartAll registers a hook run once every member has been started
// or has failed to start.
func (c *Cluster) OnAfterStartAll(h Hook) {
	c.addHook(&c.hooks.afterStartAll, h)
}

// OnBeforeStopAll registers a hook run before StopAll reaches any member.
func (c *Cluster) OnBeforeStopAll(h Hook) {
	c.addHook(&c.hooks.beforeStopAll, h)
}

// OnAfterStopAll registers a hook run once every member has been stopped
// or has failed to stop.
func (c *Cluster) OnAfterStopAll(h Hook) {
	c.addHook(&c.hooks.afterStopAll, h)
}

func (c *Cluster) addHook(list *[]Hook, h Hook) {
	if h == nil {
		return
	}

	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()

	*list = append(*list, h)
}

func (c *Cluster) runHooks(list *[]Hook) {
	c.hooksMu.Lock()
	snapshot := append([]Hook(nil), *list...)
	c.hooksMu.Unlock()

	for _, h := range snapshot {
		h(c)
	}
}

type entry struct {
	name   string
	member Member
}

func (c *Cluster) snapshot() []entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entry, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, entry{name: name, member: c.members[name]})
	}

	return out
}

// StartAll starts every member concurrently. Failures do not stop the
// other members; they are returned together as *MemberError values inside
// a *multierror.Error. After-hooks run whatever the outcome.
func (c *Cluster) StartAll(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.runHooks(&c.hooks.beforeStartAll)

	err := c.fanOut("start", func(m Member) error { return m.Start(ctx) })

	c.runHooks(&c.hooks.afterStartAll)

	return err
}

// StopAll stops every member concurrently, collecting failures the way
// StartAll does.
func (c *Cluster) StopAll(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.runHooks(&c.hooks.beforeStopAll)

	err := c.fanOut("stop", func(m Member) error { return m.Stop(ctx) })

	c.runHooks(&c.hooks.afterStopAll)

	return err
}

func (c *Cluster) fanOut(op string, fn func(Member) error) error {
	members := c.snapshot()
	errs := make([]error, len(members))

	var wg sync.WaitGroup
	for i, e := range members {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := fn(e.member); err != nil {
				errs[i] = &MemberError{Name: e.name, Err: err}
			}
		}()
	}
	wg.Wait()

	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	running := c.Running()
	if c.gauge != nil {
		c.gauge.Set(float64(running))
	}

	if merr != nil {
		c.logger.Error(op+" failed for some members",
			"failed", merr.Len(),
			"members", len(members),
			"running", running,
			"error", merr)

		return merr
	}

	c.logger.Info(op+" completed", "members", len(members), "running", running)

	return nil
}

// Run starts every member, waits for ctx to be done and stops them again.
// If any member fails to start, the members that did start are stopped and
// the start error is returned.
func (c *Cluster) Run(ctx context.Context) error {
	if err := c.StartAll(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
		defer cancel()

		c.stopStarted(stopCtx)

		return err
	}

	<-ctx.Done()

	c.logger.Info("shutting down cluster", "reason", context.Cause(ctx))

	stopCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
	defer cancel()

	return c.StopAll(stopCtx)
}

// stopStarted stops the members left running by a failed StartAll.
func (c *Cluster) stopStarted(ctx context.Context) {
	for _, e := range c.snapshot() {
		if e.member.State() != server.Started {
			continue
		}

		if err := e.member.Stop(ctx); err != nil {
			c.logger.Warn("failed to stop member", "member", e.name, "error", err)
		}
	}

	if c.gauge != nil {
		c.gauge.Set(float64(c.Running()))
	}
}
