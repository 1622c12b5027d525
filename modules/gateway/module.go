package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/signaling-relay/modules/registry"
	"github.com/example/signaling-relay/modules/relay"
	"github.com/example/signaling-relay/modules/session"
	"github.com/example/signaling-relay/modules/stats"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// SessionManager is the lifecycle manager driven by each websocket.
type SessionManager interface {
	Attach(peer relay.Peer) *session.Connection
	Handle(c *session.Connection, env relay.Envelope) error
	Detach(c *session.Connection)
}

// Module serves the websocket endpoint and the HTTP API.
type Module struct {
	cfg      Config
	app      *fiber.App
	sessions SessionManager
	rooms    registry.RegistryPort
	stats    stats.StatsPort
	logger   types.Logger

	peers sync.Map // connection id -> *wsPeer
	live  atomic.Int64
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a gateway module.
func NewModule(cfg Config, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"registry", "stats"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "registry":
		m.rooms = registry.NewRegistryAdapter(container)
	case "stats":
		m.stats = stats.NewStatsAdapter(container)
	}
}

// SetSessionManager sets the lifecycle manager (called from main.go).
func (m *Module) SetSessionManager(sessions SessionManager) {
	m.sessions = sessions
}

// Start builds the Fiber app and starts listening.
func (m *Module) Start(_ context.Context) error {
	if m.sessions == nil {
		return fmt.Errorf("session manager dependency not set")
	}
	if m.rooms == nil {
		return fmt.Errorf("registry adapter dependency not set")
	}
	if m.stats == nil {
		return fmt.Errorf("stats adapter dependency not set")
	}

	m.app = m.newApp()

	addr := ":" + m.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors
	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("Gateway started", "addr", addr)
	return nil
}

// Stop closes every websocket and shuts the HTTP server down.
func (m *Module) Stop(ctx context.Context) error {
	closing := 0
	m.peers.Range(func(_, value any) bool {
		value.(*wsPeer).close()
		closing++
		return true
	})

	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("Gateway stopped", "closedConnections", closing)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":        m.cfg.Port,
			"connections": m.live.Load(),
		},
	}
}
