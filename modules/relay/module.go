package relay

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the connection table and the relay built on top of it.
type Module struct {
	relay  *Relay
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a relay module resolving rooms through members.
func NewModule(members MemberLister, logger types.Logger) *Module {
	return &Module{
		relay:  NewRelay(NewConnectionTable(), members, logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// Relay returns the relay for in-process callers.
func (m *Module) Relay() *Relay {
	return m.relay
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Relay module started")
	return nil
}

// Stop stops the module. Transports are closed by the gateway.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Relay module stopped", "connections", m.relay.Connections().Len())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": m.relay.Connections().Len(),
		},
	}
}
