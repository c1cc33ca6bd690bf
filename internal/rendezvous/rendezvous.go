// Package rendezvous implements the auxiliary UDP hole-punch pairing
// service: two peers that share a quark token exchange public addresses
// without either one ever joining the TCP protocol.
//
// Grounded on the pack's UDP server shape (a single receive loop gated by
// a read deadline so ctx cancellation is observed promptly between
// packets) and la2go's gslistener.Server Run/Serve split between
// resolving the listen address and running the loop against an
// already-bound socket, adapted here to one stateless-per-datagram
// protocol instead of a persistent connection.
package rendezvous

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// readDeadline bounds each ReadFromUDP call so the receive loop can
// notice ctx cancellation without blocking indefinitely on an idle
// socket.
const readDeadline = 500 * time.Millisecond

// peerEntry is a to Peer Address waiting to be hole-punched with its
// eventual counterpart.
type peerEntry struct {
	addr *net.UDPAddr
}

// Server holds the live pairing table: quark token -> the first peer
// address seen for that token. The second peer to announce the same
// token completes the pair and the entry is removed.
type Server struct {
	conn *net.UDPConn

	mu      sync.Mutex
	pending map[string]peerEntry
}

// NewServer binds addr (host:port) and returns a Server ready to Serve.
func NewServer(addr string) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("rendezvous: resolving %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("rendezvous: listening on %s: %w", addr, err)
	}
	return &Server{conn: conn, pending: make(map[string]peerEntry)}, nil
}

// Addr returns the bound local address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Close closes the underlying socket, unblocking Serve.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Serve runs the receive loop until ctx is cancelled or the socket is
// closed.
func (s *Server) Serve(ctx context.Context) error {
	buf := make([]byte, 512)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(readDeadline))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("rendezvous: read failed", "err", err)
			continue
		}

		s.handleDatagram(buf[:n], addr)
	}
}

// handleDatagram implements the wire protocol: the payload is always a
// quark token (never "ok" — that prefix only ever appears in the
// server's own acknowledgement, never in a client's datagram). The
// server always echoes "ok <token>" back to the sender, then either
// stores the sender's address (first arrival) or completes the pair
// (second arrival) by sending each peer the other's encoded address.
func (s *Server) handleDatagram(payload []byte, from *net.UDPAddr) {
	token := string(payload)
	if token == "" {
		return
	}

	if _, err := s.conn.WriteToUDP([]byte("ok "+token), from); err != nil {
		slog.Debug("rendezvous: ack write failed", "token", token, "err", err)
	}

	s.mu.Lock()
	first, ok := s.pending[token]
	if !ok {
		s.pending[token] = peerEntry{addr: from}
		s.mu.Unlock()
		return
	}
	delete(s.pending, token)
	s.mu.Unlock()

	s.sendPeerAddr(from, first.addr)
	s.sendPeerAddr(first.addr, from)
}

// sendPeerAddr sends peer's address, encoded as inet_aton(host) followed
// by a little-endian uint16 port, to the peer at to.
func (s *Server) sendPeerAddr(to, peer *net.UDPAddr) {
	encoded, err := EncodeAddr(peer)
	if err != nil {
		slog.Error("rendezvous: encoding peer address", "peer", peer, "err", err)
		return
	}
	if _, err := s.conn.WriteToUDP(encoded, to); err != nil {
		slog.Debug("rendezvous: peer-address write failed", "to", to, "err", err)
	}
}

// EncodeAddr packs addr's IPv4 address and port as inet_aton(host)
// followed by a little-endian uint16 port, the 6-byte wire format the
// rendezvous protocol uses for a resolved peer address.
func EncodeAddr(addr *net.UDPAddr) ([]byte, error) {
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("rendezvous: %s is not an IPv4 address", addr.IP)
	}
	out := make([]byte, 6)
	copy(out[0:4], ip4)
	binary.LittleEndian.PutUint16(out[4:6], uint16(addr.Port))
	return out, nil
}
