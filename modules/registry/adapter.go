package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/signaling-relay/domain/room"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// RegistryPort is the read-only view of the registry used by driving adapters.
type RegistryPort interface {
	ListRooms(ctx context.Context) ([]room.RoomInfo, error)
	GetRoom(ctx context.Context, roomID string) (room.RoomInfo, error)
}

// RegistryAdapter implements RegistryPort using the service container.
type RegistryAdapter struct {
	container mono.ServiceContainer
}

// NewRegistryAdapter creates a new RegistryAdapter.
func NewRegistryAdapter(container mono.ServiceContainer) RegistryPort {
	if container == nil {
		panic("registry: ServiceContainer is nil")
	}
	return &RegistryAdapter{container: container}
}

// ListRooms returns every live room.
func (a *RegistryAdapter) ListRooms(ctx context.Context) ([]room.RoomInfo, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// GetRoom returns one room, or ErrRoomNotFound.
func (a *RegistryAdapter) GetRoom(ctx context.Context, roomID string) (room.RoomInfo, error) {
	req := GetRoomRequest{RoomID: roomID}
	var resp GetRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return room.RoomInfo{}, fmt.Errorf("failed to get room: %w", err)
	}
	if !resp.Found {
		return room.RoomInfo{}, ErrRoomNotFound
	}
	return resp.Room, nil
}
