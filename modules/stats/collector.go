package stats

import (
	"sync"
	"time"
)

// Collector accumulates activity counters since process start.
type Collector struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RoomCreated records a new room.
func (c *Collector) RoomCreated(at time.Time) {
	c.update(at, func(s *Snapshot) { s.RoomsCreated++ })
}

// RoomDeleted records a room whose last member left.
func (c *Collector) RoomDeleted(at time.Time) {
	c.update(at, func(s *Snapshot) { s.RoomsDeleted++ })
}

// PeerJoined records a join; userCount is the room size after it.
func (c *Collector) PeerJoined(userCount int, at time.Time) {
	c.update(at, func(s *Snapshot) {
		s.PeersJoined++
		s.PeakRoomSize = max(s.PeakRoomSize, userCount)
	})
}

// PeerLeft records a member leaving its room.
func (c *Collector) PeerLeft(at time.Time) {
	c.update(at, func(s *Snapshot) { s.PeersLeft++ })
}

// ChatMessage records one broadcast and how many members received it.
func (c *Collector) ChatMessage(recipients int, at time.Time) {
	c.update(at, func(s *Snapshot) {
		s.ChatMessages++
		s.ChatDeliveries += uint64(recipients)
	})
}

// Snapshot returns a copy of the counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Collector) update(at time.Time, fn func(*Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.snap)
	if at.After(c.snap.LastActivity) {
		c.snap.LastActivity = at
	}
}
