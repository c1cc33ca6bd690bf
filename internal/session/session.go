// Package session models one TCP connection's mutable state: its role in
// the protocol (unauthenticated, lobby client, playing emulator,
// spectating emulator), identity, and outbound frame queue.
package session

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/arcaderelay/ggposrv/internal/protocol"
)

// Role tags what a connection has been recognized as. It is set once, at
// the first opcode that identifies the connection's purpose, and never
// re-derived at runtime.
type Role int

const (
	RoleUnauth Role = iota
	RoleClient
	RolePlayer
	RoleSpectator
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RolePlayer:
		return "player"
	case RoleSpectator:
		return "spectator"
	default:
		return "unauth"
	}
}

// Status is a lobby client's presence state.
type Status uint32

const (
	StatusAvailable Status = 0
	StatusAway      Status = 1
	StatusPlaying   Status = 2
)

// Side is a session's role within a quark (match).
type Side uint32

const (
	SideSpectatorPre  Side = 0
	SideP1            Side = 1
	SideP2            Side = 2
	SideSpectatorPost Side = 3
)

// outboundCapacity bounds the per-session send queue. A connection that
// can't keep up with its own backlog is treated as a slow consumer and
// dropped rather than letting memory grow without bound.
const outboundCapacity = 512

// Pending is one queued outbound write awaiting the writer goroutine.
// Raw, when non-nil, is written verbatim (already framed) instead of
// being wrapped via WriteFrame(Seq, Payload) — used to replay an
// archived quark's pre-framed bytes without re-encoding them.
type Pending struct {
	Seq     uint32
	Payload []byte
	Raw     []byte
}

// Session is one TCP connection's state, safe for concurrent use by the
// reader goroutine that owns the socket's reads and by any handler
// (running on any connection's goroutine) that enqueues a push to it.
type Session struct {
	Conn net.Conn
	Host string // remote IP, no port; used as the challenging-map key

	mu          sync.Mutex
	nick        string
	role        Role
	status      Status
	prevStatus  Status
	opponent    string
	channelName string
	quark       string
	emuPort     uint32
	side        Side
	city        string
	country     string
	cc          string
	lastChatAt  time.Time
	challenging map[string]*Session

	outbound      chan Pending
	closeOnce     sync.Once
	outboundOnce  sync.Once
	closed        chan struct{}
}

// New creates a Session for an accepted connection. The session starts
// in RoleUnauth with no nickname.
func New(conn net.Conn, host string) *Session {
	return &Session{
		Conn:        conn,
		Host:        host,
		challenging: make(map[string]*Session),
		outbound:    make(chan Pending, outboundCapacity),
		closed:      make(chan struct{}),
	}
}

// Outbound exposes the channel the writer goroutine drains. Only the
// connection's own writer goroutine should read from it.
func (s *Session) Outbound() <-chan Pending {
	return s.outbound
}

// Done is closed once the session has run its disconnect cleanup.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// MarkClosed closes Done, idempotently. Handlers use this to detect a
// session that is mid-teardown before enqueueing to it.
func (s *Session) MarkClosed() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// IsClosed reports whether MarkClosed has run.
func (s *Session) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Send enqueues a reply or push frame for this session's writer. If the
// session's outbound queue is full, the frame is dropped and the
// connection is marked closed: a backlog this deep means the peer is not
// reading, and an unbounded queue would leak memory indefinitely.
func (s *Session) Send(seq uint32, payload []byte) {
	if s.IsClosed() {
		return
	}
	select {
	case s.outbound <- Pending{Seq: seq, Payload: payload}:
	default:
		slog.Warn("session outbound queue full, dropping connection", "host", s.Host, "nick", s.Nick())
		s.MarkClosed()
		_ = s.Conn.Close()
	}
}

// SendAck enqueues the four-zero-byte ACK for seq.
func (s *Session) SendAck(seq uint32) {
	s.Send(seq, []byte{0, 0, 0, 0})
}

// SendNack enqueues a NACK carrying code for seq.
func (s *Session) SendNack(seq uint32, code uint32) {
	s.Send(seq, protocol.NewEncoder().U32(code).Payload())
}

// SendPush enqueues a server-initiated push.
func (s *Session) SendPush(code byte, payload []byte) {
	s.Send(protocol.PushSeq(code), payload)
}

// SendRaw enqueues framed bytes to be written to the socket verbatim,
// bypassing WriteFrame. Used to replay an archived quark's pre-framed
// gamebuffer/savestate bytes without decoding and re-encoding them.
func (s *Session) SendRaw(framed []byte) {
	if s.IsClosed() {
		return
	}
	select {
	case s.outbound <- Pending{Raw: framed}:
	default:
		slog.Warn("session outbound queue full, dropping connection", "host", s.Host, "nick", s.Nick())
		s.MarkClosed()
		_ = s.Conn.Close()
	}
}

// --- field accessors, all lock-guarded ---

func (s *Session) Nick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nick
}

func (s *Session) SetNick(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nick = nick
}

func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Session) SetRole(r Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = r
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) SetStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *Session) PrevStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prevStatus
}

func (s *Session) SetPrevStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prevStatus = st
}

func (s *Session) Opponent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opponent
}

func (s *Session) SetOpponent(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opponent = nick
}

func (s *Session) ChannelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelName
}

func (s *Session) SetChannelName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelName = name
}

func (s *Session) Quark() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quark
}

func (s *Session) SetQuark(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quark = token
}

func (s *Session) EmuPort() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emuPort
}

func (s *Session) SetEmuPort(p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emuPort = p
}

func (s *Session) Side() Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.side
}

func (s *Session) SetSide(sd Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.side = sd
}

func (s *Session) Geo() (city, country, cc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.city, s.country, s.cc
}

func (s *Session) SetGeo(city, country, cc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.city, s.country, s.cc = city, country, cc
}

// AllowChat reports whether enough time has passed since the last chat
// message (a 2-second floor) and, if so, records now as the new
// last-chat timestamp.
func (s *Session) AllowChat(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastChatAt) < 2*time.Second {
		return false
	}
	s.lastChatAt = now
	return true
}

// AddChallenge records that self challenged the session at host, keyed
// by the challenged session's host so Accept/Decline/Cancel can look it
// up by the originating request's declared nick -> resolved host.
func (s *Session) AddChallenge(host string, target *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenging[host] = target
}

// PopChallenge removes and returns the session challenged at host, if
// any challenge to that host is outstanding.
func (s *Session) PopChallenge(host string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.challenging[host]
	if ok {
		delete(s.challenging, host)
	}
	return target, ok
}

// HasChallenge reports whether self has an outstanding challenge to host.
func (s *Session) HasChallenge(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.challenging[host]
	return ok
}

// WritePump is the single writer for this session's socket: it drains
// Outbound and writes each frame, until the channel is closed or a write
// fails. Run it on its own goroutine, one per connection, so handlers on
// any other connection's goroutine can enqueue a push without ever
// touching this socket directly.
func (s *Session) WritePump() {
	for pending := range s.outbound {
		var err error
		if pending.Raw != nil {
			_, err = s.Conn.Write(pending.Raw)
		} else {
			err = protocol.WriteFrame(s.Conn, pending.Seq, pending.Payload)
		}
		if err != nil {
			slog.Debug("write pump: frame write failed", "host", s.Host, "nick", s.Nick(), "err", err)
			s.MarkClosed()
			_ = s.Conn.Close()
			return
		}
	}
}

// CloseOutbound closes the outbound channel, ending WritePump once it
// has drained anything already queued. Call this only after the session
// is fully retired from every registry, so no handler can still be
// racing to enqueue onto it.
func (s *Session) CloseOutbound() {
	s.outboundOnce.Do(func() { close(s.outbound) })
}
