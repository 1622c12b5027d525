package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when the first member creates a room.
type RoomCreatedEvent struct {
	RoomID    string    `json:"room_id"`
	CreatedBy string    `json:"created_by"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomDeletedEvent is emitted when the last member leaves a room.
type RoomDeletedEvent struct {
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PeerJoinedEvent is emitted when a connection joins a room.
type PeerJoinedEvent struct {
	RoomID       string    `json:"room_id"`
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	UserCount    int       `json:"user_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// PeerLeftEvent is emitted when a member leaves its room.
type PeerLeftEvent struct {
	RoomID       string    `json:"room_id"`
	ConnectionID string    `json:"connection_id"`
	Username     string    `json:"username"`
	Remaining    int       `json:"remaining"`
	Timestamp    time.Time `json:"timestamp"`
}

// ChatMessageSentEvent is emitted for every chat broadcast. The message body
// is not included.
type ChatMessageSentEvent struct {
	RoomID     string    `json:"room_id"`
	Username   string    `json:"username"`
	Length     int       `json:"length"`
	Recipients int       `json:"recipients"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event definitions published by the session module.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"session",
		"RoomCreated",
		"v1",
	)

	RoomDeletedV1 = helper.EventDefinition[RoomDeletedEvent](
		"session",
		"RoomDeleted",
		"v1",
	)

	PeerJoinedV1 = helper.EventDefinition[PeerJoinedEvent](
		"session",
		"PeerJoined",
		"v1",
	)

	PeerLeftV1 = helper.EventDefinition[PeerLeftEvent](
		"session",
		"PeerLeft",
		"v1",
	)

	ChatMessageSentV1 = helper.EventDefinition[ChatMessageSentEvent](
		"session",
		"ChatMessageSent",
		"v1",
	)
)
