package registry

import (
	"crypto/subtle"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/example/signaling-relay/domain/room"
)

// Registry owns every room, its password and its member set.
//
// A single mutex guards both the room map and the connection index, so
// create, join, leave and member enumeration are linearizable for every room.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*roomState
	owners  map[string]string // connectionID -> roomID
	members int
	seq     uint64
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*roomState),
		owners: make(map[string]string),
		now:    time.Now,
	}
}

// JoinOrCreate adds connectionID to roomID, creating the room with password
// when it does not exist yet.
func (r *Registry) JoinOrCreate(roomID, password, username, connectionID string) (room.JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owners[connectionID]; ok {
		incJoinFailure("already_in_room")
		return room.JoinResult{}, ErrAlreadyInRoom
	}

	rs, exists := r.rooms[roomID]
	if !exists {
		rs = &roomState{
			id:        roomID,
			password:  password,
			createdAt: r.now(),
			members:   make(map[string]memberEntry),
		}
		r.rooms[roomID] = rs
	} else if subtle.ConstantTimeCompare([]byte(rs.password), []byte(password)) != 1 {
		incJoinFailure("incorrect_password")
		return room.JoinResult{}, ErrIncorrectPassword
	}

	existing := sortedMembers(rs, "")

	r.seq++
	rs.members[connectionID] = memberEntry{
		member: room.Member{ConnectionID: connectionID, Username: username},
		seq:    r.seq,
	}
	r.owners[connectionID] = roomID
	r.members++
	setGauges(len(r.rooms), r.members)

	return room.JoinResult{
		RoomID:          roomID,
		UserCount:       len(rs.members),
		Created:         !exists,
		ExistingMembers: existing,
	}, nil
}

// Leave removes the member owned by connectionID. The second return value is
// false when the connection owns no member.
func (r *Registry) Leave(connectionID string) (room.LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.owners[connectionID]
	if !ok {
		return room.LeaveResult{}, false
	}
	delete(r.owners, connectionID)

	rs, ok := r.rooms[roomID]
	if !ok {
		return room.LeaveResult{}, false
	}
	entry, ok := rs.members[connectionID]
	if !ok {
		return room.LeaveResult{}, false
	}
	delete(rs.members, connectionID)
	r.members--

	result := room.LeaveResult{
		RoomID:           roomID,
		Member:           entry.member,
		Remaining:        len(rs.members),
		RemainingMembers: sortedMembers(rs, ""),
	}
	if len(rs.members) == 0 {
		delete(r.rooms, roomID)
		result.RoomDeleted = true
	}
	setGauges(len(r.rooms), r.members)
	return result, true
}

// ListOtherMembers returns the members of roomID in join order, skipping
// excludingConnectionID.
func (r *Registry) ListOtherMembers(roomID, excludingConnectionID string) []room.Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return sortedMembers(rs, excludingConnectionID)
}

// Members returns every member of roomID in join order.
func (r *Registry) Members(roomID string) []room.Member {
	return r.ListOtherMembers(roomID, "")
}

// RoomOf returns the room the connection currently belongs to.
func (r *Registry) RoomOf(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.owners[connectionID]
	return roomID, ok
}

// Room returns a view of one room.
func (r *Registry) Room(roomID string) (room.RoomInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomID]
	if !ok {
		return room.RoomInfo{}, false
	}
	return rs.info(), true
}

// Rooms returns a view of every room, sorted by id.
func (r *Registry) Rooms() []room.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]room.RoomInfo, 0, len(r.rooms))
	for _, rs := range r.rooms {
		result = append(result, rs.info())
	}
	slices.SortFunc(result, func(a, b room.RoomInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

// Stats returns the current room and member counts.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Rooms: len(r.rooms), Members: r.members}
}

// sortedMembers must be called with r.mu held.
func sortedMembers(rs *roomState, exclude string) []room.Member {
	entries := make([]memberEntry, 0, len(rs.members))
	for id, e := range rs.members {
		if id == exclude {
			continue
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b memberEntry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	result := make([]room.Member, len(entries))
	for i, e := range entries {
		result[i] = e.member
	}
	return result
}
