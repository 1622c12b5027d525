package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/example/signaling-relay/domain/room"
	"github.com/example/signaling-relay/events"
	"github.com/example/signaling-relay/modules/registry"
	"github.com/example/signaling-relay/modules/relay"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/time/rate"
)

// RoomRegistry is the subset of the registry that drives membership.
type RoomRegistry interface {
	JoinOrCreate(roomID, password, username, connectionID string) (room.JoinResult, error)
	Leave(connectionID string) (room.LeaveResult, bool)
}

// Config holds per-connection limits.
type Config struct {
	ChatRate  rate.Limit
	ChatBurst int
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{ChatRate: 5, ChatBurst: 10}
}

// Manager drives every connection from attach to termination and
// dispatches its inbound events to the registry or the relay.
//
// Events for one connection must be handed to Handle in the order they were
// received; the gateway does this by calling Handle from the connection's
// read loop.
type Manager struct {
	registry RoomRegistry
	relay    *relay.Relay
	eventBus mono.EventBus
	cfg      Config
	logger   types.Logger
	now      func() time.Time
}

// NewManager creates a lifecycle manager.
func NewManager(reg RoomRegistry, rl *relay.Relay, cfg Config, logger types.Logger) *Manager {
	return &Manager{
		registry: reg,
		relay:    rl,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventBus wires the bus used for domain events. Without a bus no events
// are published.
func (m *Manager) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// Attach registers a newly opened transport and greets it with its id.
func (m *Manager) Attach(peer relay.Peer) *Connection {
	c := &Connection{
		id:          peer.ID(),
		state:       Attached,
		chatLimiter: rate.NewLimiter(m.cfg.ChatRate, m.cfg.ChatBurst),
	}
	m.relay.Connections().Add(peer)
	m.relay.Send(c.id, relay.EventConnected, relay.ConnectedPayload{UserID: c.id})
	m.logger.Debug("Connection attached", "connectionID", c.id)
	return c
}

// Detach handles a transport disconnect. It is safe to call more than once.
func (m *Manager) Detach(c *Connection) {
	m.terminate(c)
}

// Handle processes one inbound event. Replies to the client are sent here;
// the returned error is for logging only.
func (m *Manager) Handle(c *Connection, env relay.Envelope) error {
	if c.State() == Terminated {
		return ErrTerminated
	}

	switch env.Event {
	case relay.EventJoinRoom:
		return m.handleJoin(c, env.Data)
	case relay.EventLeaveRoom:
		return m.handleLeave(c)
	case relay.EventOffer, relay.EventAnswer, relay.EventICECandidate:
		return m.handleSignal(c, relay.SignalKind(env.Event), env.Data)
	case relay.EventChatMessage:
		return m.handleChat(c, env.Data)
	default:
		return m.reject(c, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event))
	}
}

func (m *Manager) handleJoin(c *Connection, data json.RawMessage) error {
	var req relay.JoinRoomPayload
	if err := decode(data, &req); err != nil {
		return m.rejectJoin(c, err)
	}
	if err := validateJoin(req); err != nil {
		return m.rejectJoin(c, err)
	}

	c.mu.Lock()
	if c.state != Attached {
		c.mu.Unlock()
		return m.rejectJoin(c, ErrAlreadyJoined)
	}
	result, err := m.registry.JoinOrCreate(req.RoomID, req.Password, req.Username, c.id)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, registry.ErrIncorrectPassword) {
			m.relay.Send(c.id, relay.EventRoomError, relay.MessagePayload{Message: "Incorrect password"})
			m.logger.Info("Join rejected", "connectionID", c.id, "roomID", req.RoomID, "reason", err)
			return err
		}
		return m.rejectJoin(c, err)
	}
	c.state = InRoom
	c.roomID = req.RoomID
	c.username = req.Username
	c.mu.Unlock()

	member := room.Member{ConnectionID: c.id, Username: req.Username}
	existing := make([]relay.PeerRecord, len(result.ExistingMembers))
	for i, em := range result.ExistingMembers {
		existing[i] = relay.PeerRecord{UserID: em.ConnectionID, Username: em.Username}
	}
	m.relay.Send(c.id, relay.EventRoomJoined, relay.RoomJoinedPayload{
		UserCount:       result.UserCount,
		ExistingMembers: existing,
	})
	m.relay.AnnounceJoin(member, result.ExistingMembers)

	m.logger.Info("Connection joined room",
		"connectionID", c.id,
		"roomID", result.RoomID,
		"userCount", result.UserCount,
		"created", result.Created)

	now := m.now()
	if result.Created {
		m.publish("RoomCreated", func() error {
			return events.RoomCreatedV1.Publish(m.eventBus, events.RoomCreatedEvent{
				RoomID:    result.RoomID,
				CreatedBy: c.id,
				Timestamp: now,
			}, nil)
		})
	}
	m.publish("PeerJoined", func() error {
		return events.PeerJoinedV1.Publish(m.eventBus, events.PeerJoinedEvent{
			RoomID:       result.RoomID,
			ConnectionID: c.id,
			Username:     req.Username,
			UserCount:    result.UserCount,
			Timestamp:    now,
		}, nil)
	})
	return nil
}

func (m *Manager) handleLeave(c *Connection) error {
	if c.State() != InRoom {
		return m.reject(c, ErrNotInRoom)
	}
	m.terminate(c)
	return nil
}

func (m *Manager) handleSignal(c *Connection, kind relay.SignalKind, data json.RawMessage) error {
	_, from, ok := c.Member()
	if !ok {
		return m.reject(c, ErrNotInRoom)
	}

	var req relay.SignalPayload
	if err := decode(data, &req); err != nil {
		return m.reject(c, err)
	}
	if req.To == "" {
		return m.reject(c, ErrMissingTarget)
	}
	body := req.Body(kind)
	if len(body) == 0 || string(body) == "null" {
		return m.reject(c, ErrMissingSignal)
	}

	m.relay.Forward(kind, body, from, req.To)
	return nil
}

func (m *Manager) handleChat(c *Connection, data json.RawMessage) error {
	roomID, from, ok := c.Member()
	if !ok {
		return m.reject(c, ErrNotInRoom)
	}

	var req relay.ChatPayload
	if err := decode(data, &req); err != nil {
		return m.reject(c, err)
	}
	if req.RoomID != "" && req.RoomID != roomID {
		return m.reject(c, ErrRoomMismatch)
	}
	if err := validateChat(req.Message); err != nil {
		return m.reject(c, err)
	}
	if !c.chatLimiter.Allow() {
		return m.reject(c, ErrRateLimited)
	}

	result := m.relay.BroadcastChat(roomID, req.Message, from.Username)
	m.publish("ChatMessageSent", func() error {
		return events.ChatMessageSentV1.Publish(m.eventBus, events.ChatMessageSentEvent{
			RoomID:     roomID,
			Username:   from.Username,
			Length:     len(req.Message),
			Recipients: result.Delivered,
			Timestamp:  time.UnixMilli(result.Timestamp),
		}, nil)
	})
	return nil
}

// terminate moves c to Terminated, releasing its membership and telling the
// rest of the room.
func (m *Manager) terminate(c *Connection) {
	c.mu.Lock()
	if c.state == Terminated {
		c.mu.Unlock()
		return
	}
	wasInRoom := c.state == InRoom
	c.state = Terminated
	c.mu.Unlock()

	m.relay.Connections().Remove(c.id)
	m.logger.Debug("Connection terminated", "connectionID", c.id)
	if !wasInRoom {
		return
	}

	result, ok := m.registry.Leave(c.id)
	if !ok {
		return
	}
	if !result.RoomDeleted {
		m.relay.AnnounceLeave(result.Member, result.RemainingMembers)
	}

	m.logger.Info("Connection left room",
		"connectionID", c.id,
		"roomID", result.RoomID,
		"remaining", result.Remaining,
		"roomDeleted", result.RoomDeleted)

	now := m.now()
	m.publish("PeerLeft", func() error {
		return events.PeerLeftV1.Publish(m.eventBus, events.PeerLeftEvent{
			RoomID:       result.RoomID,
			ConnectionID: c.id,
			Username:     result.Member.Username,
			Remaining:    result.Remaining,
			Timestamp:    now,
		}, nil)
	})
	if result.RoomDeleted {
		m.publish("RoomDeleted", func() error {
			return events.RoomDeletedV1.Publish(m.eventBus, events.RoomDeletedEvent{
				RoomID:    result.RoomID,
				Timestamp: now,
			}, nil)
		})
	}
}

func (m *Manager) reject(c *Connection, err error) error {
	m.relay.Send(c.id, relay.EventError, relay.MessagePayload{Message: err.Error()})
	return err
}

func (m *Manager) rejectJoin(c *Connection, err error) error {
	m.relay.Send(c.id, relay.EventRoomError, relay.MessagePayload{Message: err.Error()})
	return err
}

// publish emits a domain event. Publishing is best effort.
func (m *Manager) publish(name string, emit func() error) {
	if m.eventBus == nil {
		return
	}
	if err := emit(); err != nil {
		m.logger.Warn("Failed to publish event", "event", name, "error", err)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return ErrMalformed
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func validateJoin(req relay.JoinRoomPayload) error {
	if err := registry.ValidateRoomID(req.RoomID); err != nil {
		return err
	}
	if err := registry.ValidateUsername(req.Username); err != nil {
		return err
	}
	return registry.ValidatePassword(req.Password)
}

func validateChat(message string) error {
	if message == "" {
		return ErrMessageEmpty
	}
	if len(message) > MaxChatMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(message) {
		return ErrMessageInvalid
	}
	return nil
}
