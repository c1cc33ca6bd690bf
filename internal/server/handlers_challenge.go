package server

import (
	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/session"
)

func handleChallenge(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	targetNick := d.String()
	channelName := d.String()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackChallengeRefused)
		return
	}

	target, ok := st.LookupNick(targetNick)
	if !ok {
		s.SendNack(seq, protocol.NackChallengeRefused)
		return
	}

	if err := st.Broker.Challenge(s, target, channelName); err != nil {
		s.SendNack(seq, protocol.NackChallengeRefused)
		return
	}
	s.SendAck(seq)
}

func handleAccept(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	challengerNick := d.String()
	channelName := d.String()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackAcceptRefused)
		return
	}

	challenger, ok := st.LookupNick(challengerNick)
	if !ok {
		s.SendNack(seq, protocol.NackAcceptRefused)
		return
	}
	if channelName == "" {
		channelName = s.ChannelName()
	}

	if _, err := st.Broker.Accept(s, challenger, channelName); err != nil {
		s.SendNack(seq, protocol.NackAcceptRefused)
		return
	}
	s.SendAck(seq)
}

func handleDecline(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	challengerNick := d.String()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackDeclineRefused)
		return
	}

	challenger, ok := st.LookupNick(challengerNick)
	if !ok {
		s.SendNack(seq, protocol.NackDeclineRefused)
		return
	}

	if err := st.Broker.Decline(s, challenger); err != nil {
		s.SendNack(seq, protocol.NackDeclineRefused)
		return
	}
	s.SendAck(seq)
}

func handleCancel(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	targetNick := d.String()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackCancelRefused)
		return
	}

	target, ok := st.LookupNick(targetNick)
	if !ok {
		s.SendNack(seq, protocol.NackCancelRefused)
		return
	}

	if err := st.Broker.Cancel(s, target); err != nil {
		s.SendNack(seq, protocol.NackCancelRefused)
		return
	}
	s.SendAck(seq)
}

func handleWatch(st *State, s *session.Session, seq uint32, payload []byte) {
	d := protocol.NewDecoder(payload)
	targetNick := d.String()
	if d.Err() != nil {
		s.SendNack(seq, protocol.NackWatchRefused)
		return
	}

	if err := st.Broker.Watch(s, targetNick, s.ChannelName()); err != nil {
		s.SendNack(seq, protocol.NackWatchRefused)
		return
	}
	s.SendAck(seq)
}
