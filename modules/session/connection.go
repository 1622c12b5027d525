package session

import (
	"sync"

	"github.com/example/signaling-relay/domain/room"
	"golang.org/x/time/rate"
)

// State is a connection's position in its lifecycle.
type State int

const (
	// Attached means the transport is open and no room has been joined.
	Attached State = iota
	// InRoom means the connection owns a member in exactly one room.
	InRoom
	// Terminated means the connection left its room or the transport closed.
	Terminated
)

func (s State) String() string {
	switch s {
	case Attached:
		return "attached"
	case InRoom:
		return "in_room"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Connection tracks the room identity of one live transport connection.
// Room and username are set once, on a successful join.
type Connection struct {
	id string

	mu       sync.Mutex
	state    State
	roomID   string
	username string

	chatLimiter *rate.Limiter
}

// ID returns the process-unique connection id.
func (c *Connection) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Member returns the connection's room and member identity. ok is false
// unless the connection is in a room.
func (c *Connection) Member() (roomID string, member room.Member, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InRoom {
		return "", room.Member{}, false
	}
	return c.roomID, room.Member{ConnectionID: c.id, Username: c.username}, true
}
