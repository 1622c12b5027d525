package gateway

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// frameWriter is the write side of a websocket connection.
type frameWriter interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// wsPeer queues outbound frames for one websocket. Frames are written by
// writePump only, so a connection never has more than one writer.
type wsPeer struct {
	id   string
	conn frameWriter
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newWSPeer(id string, conn frameWriter, buffer int) *wsPeer {
	return &wsPeer{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// ID returns the connection id.
func (p *wsPeer) ID() string {
	return p.id
}

// Send queues frame without blocking. It reports false when the queue is
// full or the peer is closing.
func (p *wsPeer) Send(frame []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.send <- frame:
		return true
	default:
		return false
	}
}

// close stops accepting frames. writePump flushes what is queued and then
// sends a close frame.
func (p *wsPeer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (p *wsPeer) writePump(pingPeriod, writeWait time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.close()
		_ = p.conn.Close()
		close(p.done)
	}()

	for {
		select {
		case frame, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wait blocks until writePump has returned.
func (p *wsPeer) wait() {
	<-p.done
}
