package server

import (
	"time"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/session"
)

func presenceOf(s *session.Session) protocol.PresenceRecord {
	city, country, cc := s.Geo()
	return protocol.PresenceRecord{
		Nick:     s.Nick(),
		Status:   uint32(s.Status()),
		Opponent: s.Opponent(),
		City:     city,
		Country:  country,
		CC:       cc,
		Port:     s.EmuPort(),
	}
}

func broadcastPresence(st *State, s *session.Session) {
	ch, ok := st.Channels.Get(s.ChannelName())
	if !ok {
		return
	}
	payload := protocol.NewEncoder().EncodePresence(presenceOf(s)).Payload()
	for _, member := range ch.Members() {
		member.SendPush(protocol.PushPresence, payload)
	}
}

func handleMotd(st *State, s *session.Session, seq uint32) {
	s.SendAck(seq)
	payload := protocol.NewEncoder().String(st.Motd).Payload()
	s.SendPush(protocol.PushChat, payload)
}

func handleList(st *State, s *session.Session, seq uint32) {
	s.SendAck(seq)
	e := protocol.NewEncoder()
	channels := st.Channels.List()
	e.U32(uint32(len(channels)))
	for _, c := range channels {
		e.String(c.Name).String(c.RomID).String(c.Topic).String(c.Welcome).U32(uint32(c.Count()))
	}
	s.SendPush(protocol.PushChat, e.Payload())
}

func handleUsers(st *State, s *session.Session, seq uint32) {
	s.SendAck(seq)
	ch, ok := st.Channels.Get(s.ChannelName())
	if !ok {
		return
	}
	members := ch.Members()
	e := protocol.NewEncoder().U32(uint32(len(members)))
	for _, m := range members {
		e.EncodePresence(presenceOf(m))
	}
	s.SendPush(protocol.PushPresence, e.Payload())
}

// handleJoin moves s from its current channel (if any) to name: parts
// the old channel (emitting a part push to the remaining members), adds
// s to the new one, ACKs, pushes the empty "established" frame, then
// broadcasts the joiner's presence to every member including itself.
func handleJoin(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	name := d.String()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackUnknownOp)
		return
	}

	target, ok := st.Channels.Get(name)
	if !ok {
		s.SendNack(seq, protocol.NackUnknownOp)
		return
	}

	if old := s.ChannelName(); old != "" {
		if oldCh, ok := st.Channels.Get(old); ok {
			oldCh.Part(s)
			partPayload := protocol.NewEncoder().String(s.Nick()).Payload()
			for _, member := range oldCh.Members() {
				member.SendPush(protocol.PushPresence, partPayload)
			}
		}
	}

	s.SetChannelName(name)
	target.Join(s)

	s.SendAck(seq)
	s.SendPush(protocol.PushEstablished, nil)
	broadcastPresence(st, s)
}

// handleStatus rejects a status change while the session is mid-match,
// but still stashes it into prevStatus so it takes effect the moment
// the match ends and disconnectPlayer restores the pre-match status
// (handlers_disconnect.go's restore, via Session.PrevStatus). Otherwise
// updates status and rebroadcasts presence to the channel.
func handleStatus(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	newStatus := d.U32()
	if d.Err() != nil {
		return
	}
	if s.Status() == session.StatusPlaying {
		s.SetPrevStatus(session.Status(newStatus))
		return
	}
	s.SetStatus(session.Status(newStatus))
	s.SendAck(seq)
	broadcastPresence(st, s)
}

const systemNick = "<server>"

// handlePrivmsg rate-limits to one message per 2 seconds; a violation is
// answered with a system notice to the sender and the broadcast is
// suppressed.
func handlePrivmsg(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	text := d.String()
	if d.Err() != nil {
		return
	}
	s.SendAck(seq)

	if !s.AllowChat(time.Now()) {
		notice := protocol.NewEncoder().String(systemNick).String("Please do not spam").Payload()
		s.SendPush(protocol.PushChat, notice)
		return
	}

	ch, ok := st.Channels.Get(s.ChannelName())
	if !ok {
		return
	}
	chatPayload := protocol.NewEncoder().String(s.Nick()).String(text).Payload()
	for _, member := range ch.Members() {
		member.SendPush(protocol.PushChat, chatPayload)
	}
}
