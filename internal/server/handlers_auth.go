package server

import (
	"context"
	"log/slog"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/session"
)

// handleConnect just acknowledges; the session's host was already
// recorded at accept time.
func handleConnect(st *State, s *session.Session, seq uint32) {
	s.SendAck(seq)
}

// handleAuth checks nick/password against the authenticator and, on
// success, installs the session in the nick map, evicting any prior
// holder of that nick.
func handleAuth(ctx context.Context, st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	nick := d.String()
	password := d.String()
	port := d.U32()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackAuthFailed)
		return
	}

	ok, err := st.Auth.Authenticate(ctx, nick, password)
	if err != nil {
		slog.Error("server: authenticate failed", "nick", nick, "err", err)
		s.SendNack(seq, protocol.NackAuthFailed)
		return
	}
	if !ok {
		if st.Config.AutoCreateAccounts {
			if creator, ok := st.Auth.(interface {
				CreateUser(ctx context.Context, nick, password string) error
			}); ok {
				if err := creator.CreateUser(ctx, nick, password); err == nil {
					ok = true
				}
			}
		}
	}
	if !ok {
		s.SendNack(seq, protocol.NackAuthFailed)
		return
	}

	evicted := st.PromoteToClient(nick, s)
	if evicted != nil && evicted != s {
		evicted.MarkClosed()
		_ = evicted.Conn.Close()
	}

	s.SetNick(nick)
	s.SetRole(session.RoleClient)
	s.SetEmuPort(port)

	city, country, cc := st.Geo.Lookup(s.Host)
	s.SetGeo(city, country, cc)

	s.SendAck(seq)

	record := protocol.PresenceRecord{
		Nick:     nick,
		Status:   uint32(s.Status()),
		Opponent: s.Opponent(),
		City:     city,
		Country:  country,
		CC:       cc,
		Port:     port,
	}
	s.SendPush(protocol.PushPresence, protocol.EncodeAuthPush(record))
}
