package relay

import (
	"encoding/json"
	"fmt"
)

// Event names exchanged with clients.
const (
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
	EventRoomJoined       = "room-joined"
	EventRoomError        = "room-error"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventOffer            = "offer"
	EventAnswer           = "answer"
	EventICECandidate     = "ice-candidate"
	EventChatMessage      = "chat-message"
	EventConnected        = "connected"
	EventError            = "error"
)

// SignalKind is one of the directed negotiation messages.
type SignalKind string

const (
	SignalOffer        SignalKind = EventOffer
	SignalAnswer       SignalKind = EventAnswer
	SignalICECandidate SignalKind = EventICECandidate
)

// Envelope is the frame format for every WebSocket text message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an outbound frame.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", event, err)
	}
	return frame, nil
}

// JoinRoomPayload is sent by a client to join or create a room.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// RoomJoinedPayload acknowledges a successful join.
type RoomJoinedPayload struct {
	UserCount       int          `json:"userCount"`
	ExistingMembers []PeerRecord `json:"existingMembers"`
}

// PeerRecord identifies another member of the room.
type PeerRecord struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// MessagePayload carries a human-readable failure.
type MessagePayload struct {
	Message string `json:"message"`
}

// ConnectedPayload tells a client its own connection id.
type ConnectedPayload struct {
	UserID string `json:"userId"`
}

// UserDisconnectedPayload announces a departure.
type UserDisconnectedPayload struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	UserCount int    `json:"userCount"`
}

// SignalPayload is the inbound form of offer, answer and ice-candidate.
// Exactly one of Offer, Answer or Candidate is set, matching the event.
type SignalPayload struct {
	To        string          `json:"to"`
	RoomID    string          `json:"roomId,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Body returns the opaque negotiation payload for kind.
func (p SignalPayload) Body(kind SignalKind) json.RawMessage {
	switch kind {
	case SignalOffer:
		return p.Offer
	case SignalAnswer:
		return p.Answer
	case SignalICECandidate:
		return p.Candidate
	}
	return nil
}

// ChatPayload is the inbound chat message.
type ChatPayload struct {
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// ChatBroadcastPayload is the chat message fanned out to a room.
type ChatBroadcastPayload struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// outboundSignal is the relayed form of a directed message.
func outboundSignal(kind SignalKind, body json.RawMessage, fromID, fromUsername string) map[string]any {
	payload := map[string]any{
		"from": fromID,
	}
	switch kind {
	case SignalOffer:
		payload["offer"] = body
		payload["username"] = fromUsername
	case SignalAnswer:
		payload["answer"] = body
	case SignalICECandidate:
		payload["candidate"] = body
	}
	return payload
}
