package server

import (
	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/session"
)

// handleDisconnect runs the §4.8 cleanup for s exactly once: it is
// called from Server.disconnect after MarkClosed, so it is safe against
// concurrent handlers still touching s (they've either already run to
// completion on this same goroutine, or will see s closed and refuse to
// enqueue further work against it).
func handleDisconnect(st *State, s *session.Session) {
	nick := s.Nick()

	if ch, ok := st.Channels.Get(s.ChannelName()); ok {
		ch.Part(s)
		if nick != "" {
			notice := protocol.NewEncoder().U32(1).U32(0).String(nick).Payload()
			for _, member := range ch.Members() {
				member.SendPush(protocol.PushPresence, notice)
			}
		}
	}

	if nick != "" {
		for _, other := range st.ClientsSnapshot() {
			if other.Opponent() == nick {
				other.SetOpponent("")
			}
		}
	}

	st.Forget(s)

	switch s.Role() {
	case session.RolePlayer:
		disconnectPlayer(st, s)
	case session.RoleSpectator:
		disconnectSpectator(st, s)
	}
}

// disconnectPlayer implements the player-emulator branch of §4.8: both
// lobby clients are restored to their pre-match status, the quark is
// torn down, and the peer emulator's socket is closed.
func disconnectPlayer(st *State, s *session.Session) {
	token := s.Quark()
	q, ok := st.Quarks.Get(token)
	if !ok {
		return
	}

	p1Client, p2Client := q.Clients()
	restore := func(client *session.Session) {
		if client == nil {
			return
		}
		prev := client.PrevStatus()
		if client.Status() == session.StatusPlaying {
			client.SetStatus(prev)
		}
		client.SetOpponent("")
		client.SetSide(session.SideSpectatorPre)
		client.SetQuark("")
		broadcastPresence(st, client)
	}
	restore(p1Client)
	restore(p2Client)

	p1, p2 := q.Emulators()
	var peer *session.Session
	switch s {
	case p1:
		peer = p2
	case p2:
		peer = p1
	}

	st.Quarks.Delete(token)

	systemMsg := protocol.NewEncoder().String(systemNick).String("Quark id: " + token).Payload()
	if p1Client != nil {
		p1Client.SendPush(protocol.PushChat, systemMsg)
	}
	if p2Client != nil && p2Client != p1Client {
		p2Client.SendPush(protocol.PushChat, systemMsg)
	}

	if peer != nil {
		peer.MarkClosed()
		_ = peer.Conn.Close()
	}
}

// disconnectSpectator implements the spectator branch of §4.8: drop
// from the quark's spectator set and rebroadcast the new count.
func disconnectSpectator(st *State, s *session.Session) {
	q, ok := st.Quarks.Get(s.Quark())
	if !ok {
		return
	}
	q.RemoveSpectator(s)
	notifySpectatorCount(q)
}
