package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/signaling-relay/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module consumes session events and keeps activity statistics.
type Module struct {
	collector *Collector
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new stats module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		collector: NewCollector(),
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// Collector returns the underlying counters.
func (m *Module) Collector() *Collector {
	return m.collector
}

// RegisterEventConsumers subscribes to every session event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomDeletedV1, m.handleRoomDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomDeleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerJoinedV1, m.handlePeerJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerLeftV1, m.handlePeerLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.ChatMessageSentV1, m.handleChatMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register ChatMessageSent consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"RoomCreated", "RoomDeleted", "PeerJoined", "PeerLeft", "ChatMessageSent"})
	return nil
}

// RegisterServices registers the get-stats service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetStats, json.Unmarshal, json.Marshal, m.getStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}
	m.logger.Info("Registered services", "services", []string{ServiceGetStats})
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	snap := m.collector.Snapshot()
	m.logger.Info("Stats module stopped",
		"roomsCreated", snap.RoomsCreated,
		"peersJoined", snap.PeersJoined,
		"chatMessages", snap.ChatMessages)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	snap := m.collector.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms_created": snap.RoomsCreated,
			"peers_joined":  snap.PeersJoined,
		},
	}
}

// Event handlers

func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.collector.RoomCreated(event.Timestamp)
	observe("RoomCreated")
	m.logger.Debug("Room created", "roomID", event.RoomID, "createdBy", event.CreatedBy)
	return nil
}

func (m *Module) handleRoomDeleted(_ context.Context, event events.RoomDeletedEvent, _ *mono.Msg) error {
	m.collector.RoomDeleted(event.Timestamp)
	observe("RoomDeleted")
	m.logger.Debug("Room deleted", "roomID", event.RoomID)
	return nil
}

func (m *Module) handlePeerJoined(_ context.Context, event events.PeerJoinedEvent, _ *mono.Msg) error {
	m.collector.PeerJoined(event.UserCount, event.Timestamp)
	observe("PeerJoined")
	return nil
}

func (m *Module) handlePeerLeft(_ context.Context, event events.PeerLeftEvent, _ *mono.Msg) error {
	m.collector.PeerLeft(event.Timestamp)
	observe("PeerLeft")
	return nil
}

func (m *Module) handleChatMessageSent(_ context.Context, event events.ChatMessageSentEvent, _ *mono.Msg) error {
	m.collector.ChatMessage(event.Recipients, event.Timestamp)
	observe("ChatMessageSent")
	chatDeliveries.Add(float64(event.Recipients))
	return nil
}

// Service handlers

func (m *Module) getStats(_ context.Context, _ GetStatsRequest, _ *mono.Msg) (Snapshot, error) {
	return m.collector.Snapshot(), nil
}
