package server

import (
	"context"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/session"
)

// emulatorOpcodes are legal on an unauthenticated connection: the
// emulator process connects on its own socket and is identified by the
// quark token it presents plus its source IP, never by a nickname. This
// is the asymmetry the specification calls out explicitly: most opcodes
// require the session to have a nickname, but these do not.
var emulatorOpcodes = map[protocol.Opcode]bool{
	protocol.OpGetPeer:    true,
	protocol.OpGetNicks:   true,
	protocol.OpFBAPrivmsg: true,
	protocol.OpSavestate:  true,
	protocol.OpGamebuffer: true,
	protocol.OpSpectator:  true,
}

// Dispatch decodes one frame and routes it to its handler. It returns
// false when the connection must be closed (unknown opcode while
// authenticated, or a handler-signaled fatal condition); true otherwise.
func Dispatch(ctx context.Context, st *State, s *session.Session, frame protocol.Frame) (keepOpen bool) {
	if frame.IsPush() {
		// A client should never send a push-range sequence; ignore it
		// rather than crash decoding a bogus opcode out of it.
		return true
	}
	if len(frame.Payload) < 4 {
		return true
	}
	op := frame.Opcode()
	seq := frame.Seq

	authenticated := s.Nick() != ""
	if !authenticated && !emulatorOpcodes[op] && op != protocol.OpConnect && op != protocol.OpAuth {
		// Silently dropped per §4.2, not a NACK: the client hasn't
		// authenticated yet and this isn't one of the always-legal ops.
		return true
	}

	keepOpen = true
	defer func() {
		if r := recover(); r != nil {
			payload := protocol.NewEncoder().String(":<server> ERROR handler panic").Payload()
			s.SendPush(protocol.PushError, payload)
			keepOpen = true
		}
	}()

	switch op {
	case protocol.OpConnect:
		handleConnect(st, s, seq)
	case protocol.OpAuth:
		handleAuth(ctx, st, s, seq, frame.Payload)
	case protocol.OpMotd:
		handleMotd(st, s, seq)
	case protocol.OpList:
		handleList(st, s, seq)
	case protocol.OpUsers:
		handleUsers(st, s, seq)
	case protocol.OpJoin:
		handleJoin(st, s, seq, frame.Payload)
	case protocol.OpStatus:
		handleStatus(st, s, seq, frame.Payload)
	case protocol.OpPrivmsg:
		handlePrivmsg(st, s, seq, frame.Payload)
	case protocol.OpChallenge:
		handleChallenge(st, s, seq, frame.Payload)
	case protocol.OpAccept:
		handleAccept(st, s, seq, frame.Payload)
	case protocol.OpDecline:
		handleDecline(st, s, seq, frame.Payload)
	case protocol.OpCancel:
		handleCancel(st, s, seq, frame.Payload)
	case protocol.OpWatch:
		handleWatch(st, s, seq, frame.Payload)
	case protocol.OpGetPeer:
		keepOpen = handleGetPeer(ctx, st, s, seq, frame.Payload)
	case protocol.OpGetNicks:
		handleGetNicks(ctx, st, s, seq, frame.Payload)
	case protocol.OpFBAPrivmsg:
		handleFBAPrivmsg(st, s, seq, frame.Payload)
	case protocol.OpSpectator:
		handleSpectator(ctx, st, s, seq, frame.Payload)
	case protocol.OpGamebuffer:
		handleGamebuffer(st, s, seq, frame.Payload)
	case protocol.OpSavestate:
		handleSavestate(st, s, seq, frame.Payload)
	default:
		if authenticated {
			s.SendNack(seq, protocol.NackUnknownOp)
			return false
		}
		return true
	}
	return keepOpen
}
