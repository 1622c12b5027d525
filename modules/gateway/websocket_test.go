package gateway

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/example/signaling-relay/modules/registry"
	"github.com/example/signaling-relay/modules/relay"
	"github.com/example/signaling-relay/modules/session"
	fws "github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type liveGateway struct {
	module   *Module
	registry *registry.Registry
	relay    *relay.Relay
	url      string
}

// startLiveGateway serves the full app on an ephemeral port.
func startLiveGateway(t *testing.T) *liveGateway {
	t.Helper()
	reg := registry.NewRegistry()
	rl := relay.NewRelay(relay.NewConnectionTable(), reg, &mockLogger{})

	m, app := newTestModule(&fakeRooms{})
	m.SetSessionManager(session.NewManager(reg, rl, session.DefaultConfig(), &mockLogger{}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(2 * time.Second) })

	return &liveGateway{
		module:   m,
		registry: reg,
		relay:    rl,
		url:      "ws://" + ln.Addr().String() + "/ws",
	}
}

// dial connects a client and returns it with the id from its greeting.
func (g *liveGateway) dial(t *testing.T) (*fws.Conn, string) {
	t.Helper()
	conn, _, err := fws.DefaultDialer.Dial(g.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	env := readEnvelope(t, conn)
	require.Equal(t, relay.EventConnected, env.Event)
	var greeting relay.ConnectedPayload
	require.NoError(t, json.Unmarshal(env.Data, &greeting))
	_, err = uuid.Parse(greeting.UserID)
	require.NoError(t, err)
	return conn, greeting.UserID
}

func (g *liveGateway) livePeers() int {
	n := 0
	g.module.peers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func readEnvelope(t *testing.T, conn *fws.Conn) relay.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env relay.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func sendEvent(t *testing.T, conn *fws.Conn, event string, data any) {
	t.Helper()
	frame, err := relay.Encode(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(fws.TextMessage, frame))
}

func joinRoom(t *testing.T, conn *fws.Conn, roomID, username string) relay.RoomJoinedPayload {
	t.Helper()
	sendEvent(t, conn, relay.EventJoinRoom, relay.JoinRoomPayload{RoomID: roomID, Password: "p1", Username: username})
	env := readEnvelope(t, conn)
	require.Equal(t, relay.EventRoomJoined, env.Event)
	var joined relay.RoomJoinedPayload
	require.NoError(t, json.Unmarshal(env.Data, &joined))
	return joined
}

func TestWebSocket_MalformedFramesGetErrorReply(t *testing.T) {
	g := startLiveGateway(t)
	conn, _ := g.dial(t)

	tests := []struct {
		name  string
		frame string
	}{
		{"not json", "hello"},
		{"missing event", `{"data":{"roomId":"alpha"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(fws.TextMessage, []byte(tt.frame)))

			env := readEnvelope(t, conn)
			assert.Equal(t, relay.EventError, env.Event)
			var msg relay.MessagePayload
			require.NoError(t, json.Unmarshal(env.Data, &msg))
			assert.Equal(t, session.ErrMalformed.Error(), msg.Message)
		})
	}

	// The connection survives bad input.
	joined := joinRoom(t, conn, "alpha", "Alice")
	assert.Equal(t, 1, joined.UserCount)
}

func TestWebSocket_RelaysBetweenClients(t *testing.T) {
	g := startLiveGateway(t)
	alice, aliceID := g.dial(t)
	bob, bobID := g.dial(t)

	joinRoom(t, alice, "alpha", "Alice")
	joined := joinRoom(t, bob, "alpha", "Bob")
	assert.Equal(t, []relay.PeerRecord{{UserID: aliceID, Username: "Alice"}}, joined.ExistingMembers)

	env := readEnvelope(t, alice)
	require.Equal(t, relay.EventUserConnected, env.Event)

	sendEvent(t, alice, relay.EventOffer, relay.SignalPayload{To: bobID, Offer: json.RawMessage(`{"sdp":"v=0"}`)})
	env = readEnvelope(t, bob)
	require.Equal(t, relay.EventOffer, env.Event)
	var offer map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &offer))
	assert.JSONEq(t, `"`+aliceID+`"`, string(offer["from"]))
	assert.JSONEq(t, `"Alice"`, string(offer["username"]))
}

func TestWebSocket_LeaveRoomClosesSocket(t *testing.T) {
	g := startLiveGateway(t)
	alice, _ := g.dial(t)
	bob, bobID := g.dial(t)
	joinRoom(t, alice, "alpha", "Alice")
	joinRoom(t, bob, "alpha", "Bob")
	readEnvelope(t, alice) // user-connected

	sendEvent(t, bob, relay.EventLeaveRoom, nil)

	env := readEnvelope(t, alice)
	require.Equal(t, relay.EventUserDisconnected, env.Event)
	var left relay.UserDisconnectedPayload
	require.NoError(t, json.Unmarshal(env.Data, &left))
	assert.Equal(t, bobID, left.UserID)
	assert.Equal(t, 1, left.UserCount)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := bob.ReadMessage()
	require.Error(t, err)
	assert.True(t, fws.IsCloseError(err, fws.CloseNoStatusReceived, fws.CloseNormalClosure),
		"expected a close frame, got %v", err)

	require.Eventually(t, func() bool {
		return g.module.live.Load() == 1 && g.livePeers() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, registry.Stats{Rooms: 1, Members: 1}, g.registry.Stats())
}

func TestWebSocket_DisconnectReleasesEverything(t *testing.T) {
	g := startLiveGateway(t)
	alice, _ := g.dial(t)
	joinRoom(t, alice, "alpha", "Alice")

	require.NoError(t, alice.Close())

	require.Eventually(t, func() bool {
		return g.module.live.Load() == 0 &&
			g.livePeers() == 0 &&
			g.relay.Connections().Len() == 0 &&
			g.registry.Stats() == registry.Stats{}
	}, 2*time.Second, 10*time.Millisecond)
}
