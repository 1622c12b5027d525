package gateway

import (
	"encoding/json"
	"time"

	"github.com/example/signaling-relay/modules/relay"
	"github.com/example/signaling-relay/modules/session"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// handleWebSocket runs the read loop of one connection at /ws. Events are
// handed to the session manager in arrival order.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	id := uuid.New().String()
	peer := newWSPeer(id, c, m.cfg.SendBuffer)
	go peer.writePump(m.cfg.pingPeriod(), m.cfg.WriteWait)

	m.peers.Store(id, peer)
	m.live.Add(1)
	conn := m.sessions.Attach(peer)
	m.logger.Info("WebSocket connected", "connectionID", id)

	defer func() {
		m.sessions.Detach(conn)
		m.peers.Delete(id)
		m.live.Add(-1)
		peer.close()
		peer.wait()
		m.logger.Info("WebSocket disconnected", "connectionID", id)
	}()

	c.SetReadLimit(m.cfg.MaxMessageBytes)
	_ = c.SetReadDeadline(time.Now().Add(m.cfg.PongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(m.cfg.PongWait))
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("WebSocket read error", "connectionID", id, "error", err)
			}
			return
		}

		var env relay.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			m.sendError(peer, session.ErrMalformed)
			continue
		}

		if err := m.sessions.Handle(conn, env); err != nil {
			m.logger.Debug("Event rejected", "connectionID", id, "event", env.Event, "error", err)
		}
		if conn.State() == session.Terminated {
			return
		}
	}
}

func (m *Module) sendError(peer *wsPeer, err error) {
	frame, encErr := relay.Encode(relay.EventError, relay.MessagePayload{Message: err.Error()})
	if encErr != nil {
		m.logger.Error("Failed to encode error frame", "error", encErr)
		return
	}
	peer.Send(frame)
}
