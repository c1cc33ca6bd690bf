// Package challenge implements the challenge/accept/decline/cancel
// handshake that elevates two lobby clients into a shared match, plus
// the watch opcode that lets a third client request a spectating URI
// for an in-progress match between two others.
//
// Structurally grounded on a per-session challenge table guarded by one
// broker-wide mutex for the pairing step, the same atomic
// create-under-one-lock shape used for PvP duel setup elsewhere in the
// pack, simplified here since accept is instantaneous (no countdown).
package challenge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/quark"
	"github.com/arcaderelay/ggposrv/internal/session"
)

var (
	ErrChallengeRefused = errors.New("challenge: preconditions not met")
	ErrAcceptRefused    = errors.New("challenge: no outstanding challenge to accept")
	ErrDeclineRefused   = errors.New("challenge: no outstanding challenge to decline")
	ErrCancelRefused    = errors.New("challenge: no outstanding challenge to cancel")
	ErrWatchRefused     = errors.New("challenge: target is not in a live, joinable match")
)

// Broker brokers the challenge handshake and mints quarks on acceptance.
type Broker struct {
	mu     sync.Mutex
	quarks *quark.Manager
}

// NewBroker returns a Broker that mints matches through quarks.
func NewBroker(quarks *quark.Manager) *Broker {
	return &Broker{quarks: quarks}
}

// Challenge records self's challenge to target within channel. Succeeds
// iff target is available in the same channel as self, and self itself
// is not already playing.
func (b *Broker) Challenge(self, target *session.Session, channelName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target.Status() != session.StatusAvailable ||
		target.ChannelName() != self.ChannelName() ||
		self.ChannelName() != channelName ||
		self.Status() >= session.StatusPlaying {
		return ErrChallengeRefused
	}

	self.SetSide(session.SideP1)
	self.AddChallenge(target.Host, target)

	payload := protocol.NewEncoder().String(self.Nick()).String(channelName).Payload()
	target.SendPush(protocol.PushChallenge, payload)
	return nil
}

// Accept completes the handshake self received from challenger: it
// cross-links the two sessions, mints a quark, and pushes the quark URI
// to both. channelName only names the channel in the pushed quark URI;
// it is not checked against the channel the challenge was issued for.
func (b *Broker) Accept(self, challenger *session.Session, channelName string) (*quark.Quark, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := challenger.PopChallenge(self.Host); !ok {
		return nil, ErrAcceptRefused
	}

	self.SetSide(session.SideP2)
	self.SetOpponent(challenger.Nick())
	challenger.SetOpponent(self.Nick())
	self.SetPrevStatus(self.Status())
	challenger.SetPrevStatus(challenger.Status())
	self.SetStatus(session.StatusPlaying)
	challenger.SetStatus(session.StatusPlaying)

	token := quark.GenerateToken(time.Now())
	selfChallenge := challenger == self
	q := b.quarks.Create(token, challenger, self, selfChallenge)
	self.SetQuark(token)
	challenger.SetQuark(token)

	uri := fmt.Sprintf("quark:served,%s,%s,7000", channelName, token)
	payload := protocol.NewEncoder().String(challenger.Nick()).String(self.Nick()).String(uri).Payload()
	challenger.SendPush(protocol.PushQuarkURI, payload)
	self.SendPush(protocol.PushQuarkURI, payload)

	return q, nil
}

// Decline rejects the challenge self received from challenger.
func (b *Broker) Decline(self, challenger *session.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := challenger.PopChallenge(self.Host); !ok {
		return ErrDeclineRefused
	}

	payload := protocol.NewEncoder().String(self.Nick()).Payload()
	challenger.SendPush(protocol.PushDecline, payload)
	return nil
}

// Cancel withdraws self's own outstanding challenge to target.
func (b *Broker) Cancel(self, target *session.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := self.PopChallenge(target.Host); !ok {
		return ErrCancelRefused
	}

	payload := protocol.NewEncoder().String(self.Nick()).Payload()
	target.SendPush(protocol.PushCancel, payload)
	return nil
}

// Watch looks up a live match target is playing in and, if self shares
// target's channel, pushes a spectating URI to self instead of a raw
// rendezvous address.
func (b *Broker) Watch(self *session.Session, targetNick, channelName string) error {
	q, ok := b.quarks.FindLiveByClient(targetNick)
	if !ok {
		return ErrWatchRefused
	}
	p1c, p2c := q.Clients()
	var target, other *session.Session
	switch targetNick {
	case nicknameOf(p1c):
		target, other = p1c, p2c
	case nicknameOf(p2c):
		target, other = p2c, p1c
	}
	if target == nil || other == nil || target.ChannelName() != channelName || self.ChannelName() != channelName {
		return ErrWatchRefused
	}

	uri := fmt.Sprintf("quark:stream,%s,%s,7000", channelName, q.Token)
	payload := protocol.NewEncoder().String(targetNick).String(nicknameOf(other)).String(uri).Payload()
	self.SendPush(protocol.PushQuarkURI, payload)
	return nil
}

func nicknameOf(s *session.Session) string {
	if s == nil {
		return ""
	}
	return s.Nick()
}
