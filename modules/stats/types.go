package stats

import "time"

// ServiceGetStats is the request-reply service returning a Snapshot.
const ServiceGetStats = "get-stats"

// GetStatsRequest is the request for the get-stats service.
type GetStatsRequest struct{}

// Snapshot is a point-in-time copy of the activity counters.
type Snapshot struct {
	RoomsCreated   uint64    `json:"rooms_created"`
	RoomsDeleted   uint64    `json:"rooms_deleted"`
	PeersJoined    uint64    `json:"peers_joined"`
	PeersLeft      uint64    `json:"peers_left"`
	ChatMessages   uint64    `json:"chat_messages"`
	ChatDeliveries uint64    `json:"chat_deliveries"`
	PeakRoomSize   int       `json:"peak_room_size"`
	LastActivity   time.Time `json:"last_activity,omitempty"`
}
