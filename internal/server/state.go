// Package server wires the protocol dispatcher to the shared registries
// and runs the TCP accept loop described in the specification's
// concurrency model: one reader/writer goroutine pair per connection,
// cross-session effects expressed only as enqueues onto the target
// session's outbound FIFO.
package server

import (
	"sync"

	"github.com/arcaderelay/ggposrv/internal/auth"
	"github.com/arcaderelay/ggposrv/internal/challenge"
	"github.com/arcaderelay/ggposrv/internal/channel"
	"github.com/arcaderelay/ggposrv/internal/config"
	"github.com/arcaderelay/ggposrv/internal/geo"
	"github.com/arcaderelay/ggposrv/internal/quark"
	"github.com/arcaderelay/ggposrv/internal/session"
)

// State is the single owner of every process-wide registry: the
// authoritative nick map and unauth-connection map live here, under one
// mutex, per §5's "single coarse mutex, or finer per-table locks"
// license — a coarse mutex is simplest to reason about and none of
// these tables are ever a throughput bottleneck relative to socket I/O.
type State struct {
	Config   config.Config
	Channels *channel.Registry
	Quarks   *quark.Manager
	Broker   *challenge.Broker
	Recorder *quark.Recorder
	Auth     auth.Authenticator
	Geo      geo.Locator
	Motd     string

	mu            sync.Mutex
	clientsByNick map[string]*session.Session
	unauthByHost  map[string]*session.Session
}

// NewState assembles the shared registries for a fresh server instance.
func NewState(cfg config.Config, channels *channel.Registry, quarks *quark.Manager, broker *challenge.Broker, recorder *quark.Recorder, authenticator auth.Authenticator, locator geo.Locator) *State {
	if locator == nil {
		locator = geo.NullLocator{}
	}
	return &State{
		Config:        cfg,
		Channels:      channels,
		Quarks:        quarks,
		Broker:        broker,
		Recorder:      recorder,
		Auth:          authenticator,
		Geo:           locator,
		Motd:          "Welcome to ggposrv.",
		clientsByNick: make(map[string]*session.Session),
		unauthByHost:  make(map[string]*session.Session),
	}
}

// RegisterUnauth records a freshly accepted connection under its remote
// host, pending authentication.
func (st *State) RegisterUnauth(s *session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.unauthByHost[s.Host] = s
}

// PromoteToClient moves a session from the unauth table to the nick
// table under nick, replacing any prior holder of that nick. It does not
// close the prior holder: it returns the evicted session, if any, so the
// caller can close its socket outside the lock.
func (st *State) PromoteToClient(nick string, s *session.Session) (evicted *session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	evicted = st.clientsByNick[nick]
	delete(st.unauthByHost, s.Host)
	st.clientsByNick[nick] = s
	return evicted
}

// LookupNick finds a currently registered client by nickname.
func (st *State) LookupNick(nick string) (*session.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.clientsByNick[nick]
	return s, ok
}

// Forget removes s from every registry it might be listed under. Safe
// to call more than once.
func (st *State) Forget(s *session.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.unauthByHost, s.Host)
	if nick := s.Nick(); nick != "" {
		if cur, ok := st.clientsByNick[nick]; ok && cur == s {
			delete(st.clientsByNick, nick)
		}
	}
}

// ClientCount returns the number of registered clients, for periodic
// metrics logging.
func (st *State) ClientCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.clientsByNick)
}

// ClientsSnapshot returns every registered client session, for nulling
// out stale opponent pointers on disconnect.
func (st *State) ClientsSnapshot() []*session.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*session.Session, 0, len(st.clientsByNick))
	for _, s := range st.clientsByNick {
		out = append(out, s)
	}
	return out
}
