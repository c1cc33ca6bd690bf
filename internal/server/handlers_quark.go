package server

import (
	"context"
	"time"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/quark"
	"github.com/arcaderelay/ggposrv/internal/session"
)

const (
	getPeerDeadline  = 50 * time.Second
	getNicksDeadline = 30 * time.Second

	holepunchPortNormal       = 7001
	holepunchPortSelfChallenge = 7002
)

func nickOf(s *session.Session) string {
	if s == nil {
		return ""
	}
	return s.Nick()
}

// handleGetPeer implements §4.6: an emulator opens a fresh connection,
// announces its quark and UDP port, is assigned the P1 or P2 slot based
// on which lobby client shares its source host, then blocks waiting for
// the peer emulator to arrive before pushing a peer-address frame.
// Returns false when the connection must be closed (quark full, or the
// emulator's host matches neither lobby client).
func handleGetPeer(ctx context.Context, st *State, s *session.Session, seq uint32, payload []byte) bool {
	d := protocol.NewDecoder(payload)
	token := d.String()
	fbaPort := d.U32()
	if d.Err() != nil {
		return false
	}

	q := st.Quarks.GetOrCreate(token)
	p1Client, p2Client := q.Clients()

	var side session.Side
	switch {
	case q.SelfChallenge():
		side = session.SideP1 // AssignSlot picks the next empty slot by arrival order
	case p1Client != nil && p1Client.Host == s.Host:
		side = session.SideP1
	case p2Client != nil && p2Client.Host == s.Host:
		side = session.SideP2
	default:
		return false
	}

	if err := q.AssignSlot(s, side); err != nil {
		return false
	}

	s.SetQuark(token)
	s.SetEmuPort(fbaPort)
	s.SetRole(session.RolePlayer)
	if side == session.SideP1 {
		s.SetNick(nickOf(p1Client))
	} else {
		s.SetNick(nickOf(p2Client))
	}
	s.SendAck(seq)

	peer, found := quark.WaitForPeer(ctx, q, side, getPeerDeadline)
	if !found {
		return true
	}

	var host string
	var port uint32
	if st.Config.UDPHolepunch {
		host = "127.0.0.1"
		port = holepunchPortNormal
		if q.SelfChallenge() {
			port = holepunchPortSelfChallenge
		}
	} else {
		host = peer.Host
		port = peer.EmuPort()
	}

	isP1 := uint32(0)
	if s.Side() == session.SideP1 {
		isP1 = 1
	}
	pushPayload := protocol.NewEncoder().String(host).U32(port).U32(isP1).Payload()
	s.SendPush(protocol.PushPeerAddr, pushPayload)
	return true
}

// handleGetNicks implements §4.6: an emulator waits for both players to
// be present, returns their nicknames, then triggers auto-spectate and
// re-broadcasts the players' playing status to the lobby channel. If
// the quark no longer exists, it falls back to archived replay (§4.7).
func handleGetNicks(ctx context.Context, st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	token := d.String()
	if d.Err() != nil {
		return
	}

	q, ok := st.Quarks.Get(token)
	if !ok {
		attemptReplay(st, s, seq, token)
		return
	}

	var nick1, nick2 string
	if quark.WaitForBothEmulators(ctx, q, getNicksDeadline) {
		p1Emu, p2Emu := q.Emulators()
		nick1, nick2 = nickOf(p1Emu), nickOf(p2Emu)
	}

	reply := protocol.NewEncoder().
		String(nick1).
		String(nick2).
		U32(0).
		U32(uint32(q.SpectatorCount())).
		Payload()
	s.Send(seq, reply)

	p1Client, p2Client := q.Clients()

	s.SendPush(protocol.PushAutoSpectate, nil)
	s.SendPush(protocol.PushSpectatorCnt, protocol.NewEncoder().U32(1).Payload())

	for _, client := range []*session.Session{p1Client, p2Client} {
		if client == nil {
			continue
		}
		client.SetStatus(session.StatusPlaying)
		broadcastPresence(st, client)
	}
}

// handleFBAPrivmsg mirrors a chat line between the two paired emulators.
func handleFBAPrivmsg(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	token := d.String()
	msg := d.String()
	if d.Err() != nil {
		return
	}

	q, ok := st.Quarks.Get(token)
	if !ok {
		return
	}
	p1, p2 := q.Emulators()
	var peer *session.Session
	switch s {
	case p1:
		peer = p2
	case p2:
		peer = p1
	default:
		return
	}
	s.SendAck(seq)
	if peer == nil {
		return
	}
	relay := protocol.NewEncoder().String(token).String(s.Nick()).String(msg).Payload()
	peer.SendPush(protocol.PushEmuChat, relay)
}
