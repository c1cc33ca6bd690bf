// Package quark implements match lifecycle: the live-quark table, peer
// rendezvous for emulator connections, and the spectator/recorder fan-out
// described by the protocol's getpeer/getnicks/gamebuffer/savestate flow.
package quark

import (
	"regexp"
	"sync"

	"github.com/arcaderelay/ggposrv/internal/session"
)

// TokenPattern matches a well-formed quark token.
var TokenPattern = regexp.MustCompile(`^challenge-[0-9]{4}-[0-9]{10,11}\.[0-9]{2}$`)

// Quark is one match: two emulator connections (P1/P2), the two lobby
// clients that initiated it, and the live spectator set.
type Quark struct {
	Token string

	mu            sync.Mutex
	p1, p2        *session.Session
	p1Client      *session.Session
	p2Client      *session.Session
	spectators    map[*session.Session]struct{}
	recorded      bool
	selfChallenge bool
}

func newQuark(token string, p1Client, p2Client *session.Session, selfChallenge bool) *Quark {
	return &Quark{
		Token:         token,
		p1Client:      p1Client,
		p2Client:      p2Client,
		spectators:    make(map[*session.Session]struct{}),
		selfChallenge: selfChallenge,
	}
}

// Clients returns the two lobby sessions that initiated the match.
func (q *Quark) Clients() (p1Client, p2Client *session.Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.p1Client, q.p2Client
}

// SelfChallenge reports whether this quark was minted from a self-challenge.
func (q *Quark) SelfChallenge() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selfChallenge
}

// Emulators returns the two emulator sessions, either of which may still
// be nil if that side hasn't called getpeer yet.
func (q *Quark) Emulators() (p1, p2 *session.Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.p1, q.p2
}

// ErrSlotFull is returned by AssignSlot when the requested side's
// emulator slot is already occupied.
var ErrSlotFull = errSlotFull{}

type errSlotFull struct{}

func (errSlotFull) Error() string { return "quark: emulator slot already assigned" }

// AssignSlot fills the P1 or P2 emulator slot with emu, choosing the
// slot by side. In a self-challenge quark, both slots are filled from
// the single originating session: the first emulator to call getpeer
// takes P1, the second takes P2, regardless of which side it reports.
func (q *Quark) AssignSlot(emu *session.Session, side session.Side) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.selfChallenge {
		switch {
		case q.p1 == nil:
			q.p1 = emu
			emu.SetSide(session.SideP1)
			return nil
		case q.p2 == nil:
			q.p2 = emu
			emu.SetSide(session.SideP2)
			return nil
		default:
			return ErrSlotFull
		}
	}

	switch side {
	case session.SideP1:
		if q.p1 != nil {
			return ErrSlotFull
		}
		q.p1 = emu
	case session.SideP2:
		if q.p2 != nil {
			return ErrSlotFull
		}
		q.p2 = emu
	default:
		return ErrSlotFull
	}
	return nil
}

// BothEmulatorsPresent reports whether both P1 and P2 emulator slots are
// filled.
func (q *Quark) BothEmulatorsPresent() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.p1 != nil && q.p2 != nil
}

// Recorded reports whether the opening gamebuffer frame has been captured.
func (q *Quark) Recorded() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.recorded
}

// MarkRecorded flips the recorded flag, returning true the first time
// it's called (the caller uses this to decide whether to write the
// archive files).
func (q *Quark) MarkRecorded() (firstTime bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.recorded {
		return false
	}
	q.recorded = true
	return true
}

// AddSpectator adds s to the live spectator set.
func (q *Quark) AddSpectator(s *session.Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.spectators[s] = struct{}{}
}

// RemoveSpectator removes s from the live spectator set.
func (q *Quark) RemoveSpectator(s *session.Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.spectators, s)
}

// Spectators returns a snapshot of the current spectator set.
func (q *Quark) Spectators() []*session.Session {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*session.Session, 0, len(q.spectators))
	for s := range q.spectators {
		out = append(out, s)
	}
	return out
}

// SpectatorCount returns the current spectator count.
func (q *Quark) SpectatorCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.spectators)
}
