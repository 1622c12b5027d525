package room

import "time"

// Member is a connection's identity and display name inside one room.
type Member struct {
	ConnectionID string `json:"userId"`
	Username     string `json:"username"`
}

// RoomInfo is a read-only view of a room. It never carries the password.
type RoomInfo struct {
	ID        string    `json:"id"`
	UserCount int       `json:"user_count"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinResult is returned by a successful join or create.
type JoinResult struct {
	RoomID    string
	UserCount int
	Created   bool

	// ExistingMembers holds everyone already in the room, in join order,
	// excluding the joiner.
	ExistingMembers []Member
}

// LeaveResult describes the room after a member left it.
type LeaveResult struct {
	RoomID      string
	Member      Member
	Remaining   int
	RoomDeleted bool

	// RemainingMembers holds who was still in the room right after the
	// leave, in join order.
	RemainingMembers []Member
}
