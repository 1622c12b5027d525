package gateway

import "time"

// RoomResponse is the API response for a room. Passwords and member
// identities are never exposed.
type RoomResponse struct {
	ID        string    `json:"id"`
	UserCount int       `json:"user_count"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
