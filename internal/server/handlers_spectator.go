package server

import (
	"bytes"
	"context"
	"time"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/quark"
	"github.com/arcaderelay/ggposrv/internal/session"
)

const replaySavestateGap = 900 * time.Millisecond

// handleSpectator implements §4.7's live path: join a live quark's
// spectator set and notify every participant of the new audience size.
// If the quark isn't live, it falls back to archived replay.
func handleSpectator(ctx context.Context, st *State, s *session.Session, seq uint32, payload []byte) {
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

	s.SendAck(seq)
	s.SetRole(session.RoleSpectator)
	s.SetQuark(token)
	s.SetSide(session.SideSpectatorPre)
	q.AddSpectator(s)

	notifySpectatorCount(q)
}

// notifySpectatorCount pushes the current audience size to both
// emulators and every live spectator: this is how every participant
// learns the new count.
func notifySpectatorCount(q *quark.Quark) {
	p1, p2 := q.Emulators()
	count := uint32(q.SpectatorCount())
	countPayload := protocol.NewEncoder().U32(count).Payload()

	notify := func(s *session.Session) {
		if s == nil {
			return
		}
		s.SendPush(protocol.PushAutoSpectate, nil)
		s.SendPush(protocol.PushSpectatorCnt, countPayload)
	}
	notify(p1)
	notify(p2)
	for _, sp := range q.Spectators() {
		notify(sp)
	}
}

// attemptReplay implements §4.7's archived-replay path: a quark-shaped
// token with no live match but an on-disk archive is replayed to a
// lone spectator, pacing writes to simulate match timing. A malformed
// token or missing archive is a silent backend failure: the operation
// simply does not proceed, per §7's backend-failure handling.
func attemptReplay(st *State, s *session.Session, seq uint32, token string) {
	if !quark.TokenPattern.MatchString(token) {
		return
	}
	if st.Recorder == nil || !st.Recorder.ArchiveExists(token) {
		return
	}

	nick1, nick2, err := st.Recorder.ReadNicknames(token)
	if err != nil {
		return
	}

	reply := protocol.NewEncoder().String(nick1).String(nick2).U32(0).U32(0).Payload()
	s.Send(seq, reply)

	time.Sleep(2 * time.Second)

	gamebuffer, err := st.Recorder.ReadGamebuffer(token)
	if err != nil {
		return
	}
	s.SendRaw(gamebuffer)
	s.SetRole(session.RoleSpectator)
	s.SetQuark(token)
	s.SetSide(session.SideSpectatorPost)

	chunks, err := st.Recorder.ReadSavestateChunks(token)
	if err != nil {
		return
	}
	for i, chunk := range chunks {
		if i > 0 {
			time.Sleep(replaySavestateGap)
		}
		s.SendRaw(chunk)
	}
}

// handleGamebuffer implements §4.7's recording path: the first
// gamebuffer frame for a quark is relayed to every pre-savestate
// spectator (promoting each to post-savestate) and, the first time
// only, archived to disk alongside the two players' nicknames.
func handleGamebuffer(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	token := d.String()
	buf := d.Rest()
	if d.Err() != nil {
		return
	}

	q, ok := st.Quarks.Get(token)
	if !ok {
		return
	}

	relayPayload := protocol.NewEncoder().Bytes(buf).Payload()
	for _, sp := range q.Spectators() {
		if sp.Side() != session.SideSpectatorPre {
			continue
		}
		sp.SendPush(protocol.PushGamebuffer, relayPayload)
		sp.SetSide(session.SideSpectatorPost)
	}

	if q.MarkRecorded() && st.Recorder != nil {
		framed := encodeFramedPush(protocol.PushGamebuffer, relayPayload)
		_ = st.Recorder.WriteGamebuffer(token, framed)
		p1Client, p2Client := q.Clients()
		_ = st.Recorder.WriteNicknames(token, nickOf(p1Client), nickOf(p2Client))
	}

	s.SendAck(seq)
}

// handleSavestate implements §4.7's per-frame relay: ACK the uploading
// player, relay block2||block1||buf to every post-savestate spectator,
// and append the framed bytes to the savestate archive.
func handleSavestate(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	token := d.String()
	block1 := d.Bytes(4)
	block2 := d.Bytes(4)
	buf := d.Rest()
	if d.Err() != nil {
		return
	}
	s.SendAck(seq)

	q, ok := st.Quarks.Get(token)
	if !ok {
		return
	}

	relayPayload := protocol.NewEncoder().Bytes(block2).Bytes(block1).Bytes(buf).Payload()
	for _, sp := range q.Spectators() {
		if sp.Side() != session.SideSpectatorPost {
			continue
		}
		sp.SendPush(protocol.PushSavestate, relayPayload)
	}

	if st.Recorder != nil {
		framed := encodeFramedPush(protocol.PushSavestate, relayPayload)
		_ = st.Recorder.AppendSavestate(token, framed)
	}
}

// encodeFramedPush returns the exact wire bytes (length+seq header plus
// payload) that a live spectator socket would receive for this push —
// the format the archive files store, so replay can write them back
// verbatim.
func encodeFramedPush(code byte, payload []byte) []byte {
	var buf bytes.Buffer
	_ = protocol.WritePush(&buf, code, payload)
	return buf.Bytes()
}
