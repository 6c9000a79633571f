package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kart-io/logger"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// DefaultShutdownTimeout bounds Stop when no timeout is configured.
const DefaultShutdownTimeout = 30 * time.Second

// Option configures a Manager.
type Option func(*Manager)

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.shutdownTimeout = d
		}
	}
}

// WithServer adds a server started by the manager.
func WithServer(s Runnable) Option {
	return func(m *Manager) {
		m.servers = append(m.servers, s)
	}
}

// Manager manages servers with a unified lifecycle.
type Manager struct {
	shutdownTimeout time.Duration
	servers         []Runnable
	hooks           []ShutdownHook

	mu      sync.Mutex
	started []Runnable
}

// NewManager creates a new server manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{shutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddServer adds a server to the manager.
func (m *Manager) AddServer(s Runnable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers = append(m.servers, s)
}

// OnShutdown registers a hook run after the servers stopped. Hooks run in
// reverse registration order.
func (m *Manager) OnShutdown(hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Start starts every server in order. When one fails the servers already
// started are stopped again.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.started) > 0 {
		return fmt.Errorf("server manager already started")
	}
	for _, s := range m.servers {
		if err := s.Start(ctx); err != nil {
			for i := len(m.started) - 1; i >= 0; i-- {
				_ = m.started[i].Stop(ctx)
			}
			m.started = nil
			return fmt.Errorf("failed to start server %s: %w", s.Name(), err)
		}
		logger.Infow("Server started", "name", s.Name())
		m.started = append(m.started, s)
	}
	return nil
}

// Stop stops the started servers in reverse order, then runs the shutdown
// hooks. Every error is collected.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	started, hooks := m.started, m.hooks
	m.started, m.hooks = nil, nil
	m.mu.Unlock()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		s := started[i]
		if err := s.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop server %s: %w", s.Name(), err))
			continue
		}
		logger.Infow("Server stopped", "name", s.Name())
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

// Run starts all servers, then waits like Wait.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		_ = m.Stop(context.Background())
		return err
	}
	return m.Wait(ctx)
}

// Wait blocks until ctx is done or SIGINT/SIGTERM arrives, then stops the
// manager within the shutdown timeout.
func (m *Manager) Wait(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()
	return m.Stop(shutdownCtx)
}
