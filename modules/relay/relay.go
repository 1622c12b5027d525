package relay

import (
	"encoding/json"
	"time"

	"github.com/example/signaling-relay/domain/room"
	"github.com/go-monolith/mono/pkg/types"
)

// MemberLister resolves room membership for chat fan-out and directed
// messages.
type MemberLister interface {
	Members(roomID string) []room.Member
	RoomOf(connectionID string) (string, bool)
}

// ChatResult reports one chat broadcast.
type ChatResult struct {
	Timestamp int64
	Delivered int
	Dropped   int
}

// Relay routes directed signaling to one connection and presence/chat
// events to every member of a room. Delivery is at most once: frames for a
// connection that is gone or saturated are dropped.
type Relay struct {
	conns   *ConnectionTable
	members MemberLister
	logger  types.Logger
	now     func() time.Time
}

// NewRelay creates a relay over conns that resolves rooms through members.
func NewRelay(conns *ConnectionTable, members MemberLister, logger types.Logger) *Relay {
	return &Relay{
		conns:   conns,
		members: members,
		logger:  logger,
		now:     time.Now,
	}
}

// Connections returns the live connection table.
func (r *Relay) Connections() *ConnectionTable {
	return r.conns
}

// Send delivers a single event to one connection.
func (r *Relay) Send(connectionID, event string, payload any) bool {
	frame, err := Encode(event, payload)
	if err != nil {
		r.logger.Error("Failed to encode frame", "event", event, "error", err)
		return false
	}
	return r.deliver(connectionID, event, frame)
}

// Forward relays a negotiation message from one member to the connection
// toConnectionID. The target must be a member of the sender's room; a target
// that left, never joined or sits in another room is dropped without error.
func (r *Relay) Forward(kind SignalKind, body json.RawMessage, from room.Member, toConnectionID string) bool {
	if !r.sameRoom(from.ConnectionID, toConnectionID) {
		addDropped(string(kind), 1)
		r.logDrop(kind, from, toConnectionID)
		return false
	}
	delivered := r.Send(toConnectionID, string(kind), outboundSignal(kind, body, from.ConnectionID, from.Username))
	if !delivered {
		r.logDrop(kind, from, toConnectionID)
	}
	return delivered
}

// AnnounceJoin tells recipients that newcomer arrived, so each of them can
// start an offer toward it. recipients must be the membership snapshot taken
// with the join.
func (r *Relay) AnnounceJoin(newcomer room.Member, recipients []room.Member) int {
	frame, err := Encode(EventUserConnected, PeerRecord{
		UserID:   newcomer.ConnectionID,
		Username: newcomer.Username,
	})
	if err != nil {
		r.logger.Error("Failed to encode frame", "event", EventUserConnected, "error", err)
		return 0
	}
	return r.fanOut(recipients, EventUserConnected, frame)
}

// AnnounceLeave tells the members that remained after leaver's departure.
// remaining must be the membership snapshot taken with the leave.
func (r *Relay) AnnounceLeave(leaver room.Member, remaining []room.Member) int {
	frame, err := Encode(EventUserDisconnected, UserDisconnectedPayload{
		UserID:    leaver.ConnectionID,
		Username:  leaver.Username,
		UserCount: len(remaining),
	})
	if err != nil {
		r.logger.Error("Failed to encode frame", "event", EventUserDisconnected, "error", err)
		return 0
	}
	return r.fanOut(remaining, EventUserDisconnected, frame)
}

// BroadcastChat delivers message to every member of roomID, the sender
// included. All recipients see the same server-assigned timestamp.
func (r *Relay) BroadcastChat(roomID, message, fromUsername string) ChatResult {
	result := ChatResult{Timestamp: r.now().UnixMilli()}
	frame, err := Encode(EventChatMessage, ChatBroadcastPayload{
		Message:   message,
		Username:  fromUsername,
		Timestamp: result.Timestamp,
	})
	if err != nil {
		r.logger.Error("Failed to encode frame", "event", EventChatMessage, "error", err)
		return result
	}

	members := r.members.Members(roomID)
	result.Delivered = r.fanOut(members, EventChatMessage, frame)
	result.Dropped = len(members) - result.Delivered
	return result
}

func (r *Relay) sameRoom(fromID, toID string) bool {
	fromRoom, ok := r.members.RoomOf(fromID)
	if !ok {
		return false
	}
	toRoom, ok := r.members.RoomOf(toID)
	return ok && toRoom == fromRoom
}

func (r *Relay) logDrop(kind SignalKind, from room.Member, toConnectionID string) {
	r.logger.Debug("Dropped directed message",
		"kind", string(kind),
		"from", from.ConnectionID,
		"to", toConnectionID)
}

func (r *Relay) fanOut(members []room.Member, event string, frame []byte) int {
	delivered := 0
	for _, m := range members {
		if r.deliver(m.ConnectionID, event, frame) {
			delivered++
		}
	}
	return delivered
}

func (r *Relay) deliver(connectionID, event string, frame []byte) bool {
	peer, ok := r.conns.Lookup(connectionID)
	if !ok || !peer.Send(frame) {
		addDropped(event, 1)
		return false
	}
	addDelivered(event, 1)
	return true
}
