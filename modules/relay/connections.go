package relay

import "sync"

// Peer is the outbound half of a live connection.
type Peer interface {
	ID() string

	// Send queues a frame without blocking. It returns false when the peer
	// is closed or its queue is full.
	Send(frame []byte) bool
}

// ConnectionTable maps connection ids to live peers.
type ConnectionTable struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

// NewConnectionTable creates an empty table.
func NewConnectionTable() *ConnectionTable {
	return &ConnectionTable{peers: make(map[string]Peer)}
}

// Add registers a peer under its id.
func (t *ConnectionTable) Add(p Peer) {
	t.mu.Lock()
	t.peers[p.ID()] = p
	n := len(t.peers)
	t.mu.Unlock()
	setConnections(n)
}

// Remove drops the peer with the given id. Removing an unknown id is a no-op.
func (t *ConnectionTable) Remove(id string) {
	t.mu.Lock()
	delete(t.peers, id)
	n := len(t.peers)
	t.mu.Unlock()
	setConnections(n)
}

// Lookup returns the live peer for id.
func (t *ConnectionTable) Lookup(id string) (Peer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.peers[id]
	return p, ok
}

// Len returns the number of live peers.
func (t *ConnectionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.peers)
}
