package session

import (
	"context"

	"github.com/example/signaling-relay/events"
	"github.com/example/signaling-relay/modules/relay"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module hosts the connection lifecycle manager and publishes its events.
type Module struct {
	manager *Manager
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a session module.
func NewModule(reg RoomRegistry, rl *relay.Relay, cfg Config, logger types.Logger) *Module {
	return &Module{
		manager: NewManager(reg, rl, cfg, logger),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "session"
}

// Manager returns the lifecycle manager used by the transport.
func (m *Module) Manager() *Manager {
	return m.manager
}

// SetEventBus is called by the framework to inject the event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.manager.SetEventBus(bus)
}

// EmitEvents declares the events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.RoomDeletedV1.ToBase(),
		events.PeerJoinedV1.ToBase(),
		events.PeerLeftV1.ToBase(),
		events.ChatMessageSentV1.ToBase(),
	}
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Session module started",
		"chatRate", float64(m.manager.cfg.ChatRate),
		"chatBurst", m.manager.cfg.ChatBurst)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Session module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"eventBus": m.manager.eventBus != nil,
		},
	}
}
