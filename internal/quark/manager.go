package quark

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/arcaderelay/ggposrv/internal/session"
)

// Manager owns the live-quark table: the process-wide map of match token
// to in-flight Quark. Grounded on the same sync.Map-keyed-by-string shape
// used for session lookup tables elsewhere in this codebase, generalized
// to quark tokens instead of account session keys.
type Manager struct {
	mu     sync.RWMutex
	quarks map[string]*Quark
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{quarks: make(map[string]*Quark)}
}

// GenerateToken mints a token of shape challenge-DDDD-TTTTTTTTTT.RR: a
// 4-digit random, the current Unix time, and a 2-digit random.
func GenerateToken(now time.Time) string {
	return fmt.Sprintf("challenge-%04d-%d.%02d", rand.IntN(10000), now.Unix(), rand.IntN(100))
}

// Create mints a new quark for an accepted challenge and registers it.
// p1Client is the challenger (side=1), p2Client is the accepter (side=2);
// for a self-challenge they are the same session.
func (m *Manager) Create(token string, p1Client, p2Client *session.Session, selfChallenge bool) *Quark {
	q := newQuark(token, p1Client, p2Client, selfChallenge)
	m.mu.Lock()
	m.quarks[token] = q
	m.mu.Unlock()
	return q
}

// GetOrCreate fetches the quark for token, creating an empty shell with
// no lobby clients if none exists yet. This mirrors the original
// behavior of tolerating an emulator that calls getpeer before the
// matching accept has registered the quark in rare races; the handler
// layer still validates p1Client/p2Client before trusting the quark.
func (m *Manager) GetOrCreate(token string) *Quark {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.quarks[token]; ok {
		return q
	}
	q := newQuark(token, nil, nil, false)
	m.quarks[token] = q
	return q
}

// Get looks up a live quark by token.
func (m *Manager) Get(token string) (*Quark, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quarks[token]
	return q, ok
}

// Count returns the number of live quarks, for periodic metrics logging.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.quarks)
}

// Delete removes a quark from the live table, e.g. when a player
// disconnects and the match ends.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quarks, token)
}

// pollInterval is the ticker period used by the wait helpers below. The
// specified 50s/30s deadlines are upper bounds, not contracts, so a
// short, cheap poll interval is fine.
const pollInterval = 200 * time.Millisecond

// WaitForBothEmulators blocks until both P1 and P2 emulator slots are
// filled, the context is cancelled, or deadline elapses.
func WaitForBothEmulators(ctx context.Context, q *Quark, deadline time.Duration) bool {
	if q.BothEmulatorsPresent() {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return q.BothEmulatorsPresent()
		case <-ticker.C:
			if q.BothEmulatorsPresent() {
				return true
			}
		}
	}
}

// WaitForPeer blocks until the emulator slot opposite mySide is filled,
// returning that peer session, the context is cancelled, or deadline
// elapses.
func WaitForPeer(ctx context.Context, q *Quark, mySide session.Side, deadline time.Duration) (*session.Session, bool) {
	peer := func() *session.Session {
		p1, p2 := q.Emulators()
		if mySide == session.SideP1 {
			return p2
		}
		return p1
	}
	if p := peer(); p != nil {
		return p, true
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p := peer()
			return p, p != nil
		case <-ticker.C:
			if p := peer(); p != nil {
				return p, true
			}
		}
	}
}

// FindLiveByClient returns the live quark in which nick is one of the two
// lobby clients currently playing, for the watch opcode.
func (m *Manager) FindLiveByClient(nick string) (*Quark, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quarks {
		p1c, p2c := q.Clients()
		if (p1c != nil && p1c.Nick() == nick) || (p2c != nil && p2c.Nick() == nick) {
			return q, true
		}
	}
	return nil, false
}
