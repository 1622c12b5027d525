package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the room registry to the rest of the application.
type Module struct {
	registry *Registry
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new registry module with an empty registry.
func NewModule(logger types.Logger) *Module {
	return &Module{
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// Registry returns the registry for in-process callers.
// The session and relay modules need synchronous access, so it is injected
// from main.go rather than reached through the service container.
func (m *Module) Registry() *Registry {
	return m.registry
}

// RegisterServices registers the read-only room query services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetRoom, json.Unmarshal, json.Marshal, m.getRoom,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoom, err)
	}

	m.logger.Info("Registered services", "services", []string{ServiceListRooms, ServiceGetRoom})
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Registry module started")
	return nil
}

// Stop stops the module. Rooms live only in memory and are dropped.
func (m *Module) Stop(_ context.Context) error {
	stats := m.registry.Stats()
	m.logger.Info("Registry module stopped", "rooms", stats.Rooms, "members", stats.Members)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	stats := m.registry.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms":   stats.Rooms,
			"members": stats.Members,
		},
	}
}

func (m *Module) listRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.registry.Rooms()}, nil
}

func (m *Module) getRoom(_ context.Context, req GetRoomRequest, _ *mono.Msg) (GetRoomResponse, error) {
	if req.RoomID == "" {
		return GetRoomResponse{}, fmt.Errorf("room_id is required")
	}
	info, ok := m.registry.Room(req.RoomID)
	return GetRoomResponse{Found: ok, Room: info}, nil
}
