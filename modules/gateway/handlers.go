package gateway

import (
	"errors"

	"github.com/example/signaling-relay/modules/registry"
	"github.com/gofiber/fiber/v2"
)

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	rooms, err := m.rooms.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Warn("Health check could not reach registry", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "degraded",
			Details: map[string]any{
				"connections": m.live.Load(),
			},
		})
	}

	members := 0
	for _, r := range rooms {
		members += r.UserCount
	}
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"rooms":       len(rooms),
			"members":     members,
			"connections": m.live.Load(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *Module) listRooms(c *fiber.Ctx) error {
	rooms, err := m.rooms.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
		Total: len(rooms),
	}
	for _, r := range rooms {
		response.Rooms = append(response.Rooms, RoomResponse{
			ID:        r.ID,
			UserCount: r.UserCount,
			CreatedAt: r.CreatedAt,
		})
	}
	return c.JSON(response)
}

// getRoom handles GET /api/v1/rooms/:id.
func (m *Module) getRoom(c *fiber.Ctx) error {
	roomID := c.Params("id")
	if err := registry.ValidateRoomID(roomID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	r, err := m.rooms.GetRoom(c.UserContext(), roomID)
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: "Room not found",
			})
		}
		m.logger.Error("Failed to get room", "roomID", roomID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get room",
		})
	}

	return c.JSON(RoomResponse{
		ID:        r.ID,
		UserCount: r.UserCount,
		CreatedAt: r.CreatedAt,
	})
}

// getStats handles GET /api/v1/stats.
func (m *Module) getStats(c *fiber.Ctx) error {
	snap, err := m.stats.GetStats(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to get stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get stats",
		})
	}
	return c.JSON(snap)
}
