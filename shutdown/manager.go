// Package shutdown coordinates graceful teardown: prioritized cleanup
// hooks, signal handling, and a force-exit on a repeated signal.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Hook is one cleanup step. It must respect the context deadline.
type Hook func(ctx context.Context) error

type entry struct {
	name     string
	priority int
	fn       Hook
	order    int
}

// Manager runs registered hooks in priority order when a termination
// signal arrives or Trigger is called.
//
// Lower priority values run first. Ties run in registration order.
type Manager struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries []entry
	started bool
	done    bool

	ctx    context.Context
	cancel context.CancelFunc

	sigChan chan os.Signal
	lastSig os.Signal
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout bounds the whole shutdown sequence. Default 30 seconds.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// NewManager creates a Manager. The logger may be nil.
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:  logger,
		timeout: 30 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 2),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled once shutdown begins. Long-running components
// should watch it.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup hook. Lower priority values run first:
//
//	0-9   stop accepting work (HTTP server)
//	10-19 close resources (database)
//	20+   final flush (logger sync)
func (m *Manager) Register(name string, priority int, fn Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{
		name:     name,
		priority: priority,
		fn:       fn,
		order:    len(m.entries),
	})
}

// Start installs the SIGINT/SIGTERM handler. The first signal cancels
// the context; a second one force-exits without waiting for hooks.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-m.sigChan
		m.mu.Lock()
		m.lastSig = sig
		m.mu.Unlock()
		m.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		m.cancel()

		<-m.sigChan
		m.logger.Warn("received second signal, forcing exit")
		os.Exit(1)
	}()
}

// Trigger begins shutdown programmatically, as if a signal had arrived.
func (m *Manager) Trigger() {
	m.cancel()
}

// Signal returns the signal that initiated shutdown, or nil when
// shutdown was triggered programmatically.
func (m *Manager) Signal() os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSig
}

// Shutdown runs all hooks in priority order under the configured
// timeout and returns the first error. Safe to call once; repeat calls
// are no-ops.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	hooks := make([]entry, len(m.entries))
	copy(hooks, m.entries)
	m.mu.Unlock()

	signal.Stop(m.sigChan)
	m.cancel()

	sort.SliceStable(hooks, func(i, j int) bool {
		if hooks[i].priority != hooks[j].priority {
			return hooks[i].priority < hooks[j].priority
		}
		return hooks[i].order < hooks[j].order
	})

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var firstErr error
	for _, h := range hooks {
		m.logger.Debug("running shutdown hook", zap.String("name", h.name))
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed",
				zap.String("name", h.name),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
		if ctx.Err() != nil {
			m.logger.Warn("shutdown timeout exceeded, abandoning remaining hooks")
			break
		}
	}
	return firstErr
}
