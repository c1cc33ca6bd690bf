// Package channel implements the static channel catalog and per-channel
// membership tracking used for presence, join/part, and broadcast.
package channel

import (
	"sync"

	"github.com/arcaderelay/ggposrv/internal/session"
)

// Channel is immutable apart from its member set: name, rom id, topic,
// and welcome text are fixed at catalog construction time.
type Channel struct {
	Name    string
	RomID   string
	Topic   string
	Welcome string

	mu      sync.RWMutex
	members map[*session.Session]struct{}
}

func newChannel(name, romID, topic, welcome string) *Channel {
	return &Channel{
		Name:    name,
		RomID:   romID,
		Topic:   topic,
		Welcome: welcome,
		members: make(map[*session.Session]struct{}),
	}
}

// Join adds s to the member set. Idempotent.
func (c *Channel) Join(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members[s] = struct{}{}
}

// Part removes s from the member set. Idempotent.
func (c *Channel) Part(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.members, s)
}

// Members returns a snapshot of the current member set. Safe to range
// over while other goroutines mutate the channel concurrently.
func (c *Channel) Members() []*session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*session.Session, 0, len(c.members))
	for s := range c.members {
		out = append(out, s)
	}
	return out
}

// Count returns the current member count.
func (c *Channel) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}
