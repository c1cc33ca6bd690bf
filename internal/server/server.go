package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/session"
)

// Server is the TCP listener for lobby clients and emulator connections.
// Grounded on la2go's gslistener.Server Run/Serve split: Run resolves
// and binds the listen address, Serve drives an already-bound listener
// so tests can pass one in directly.
type Server struct {
	state *State

	mu       sync.Mutex
	listener net.Listener
}

// New returns a Server backed by st.
func New(st *State) *Server {
	return &Server{state: st}
}

// Addr returns the bound listen address, or nil before Run/Serve starts.
func (srv *Server) Addr() net.Addr {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// Close closes the listener, unblocking the accept loop.
func (srv *Server) Close() error {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listener != nil {
		return srv.listener.Close()
	}
	return nil
}

// Run binds bindAddr:port and serves until ctx is cancelled.
func (srv *Server) Run(ctx context.Context, bindAddr string, port int) error {
	addr := fmt.Sprintf("%s:%d", bindAddr, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", addr, err)
	}
	srv.mu.Lock()
	srv.listener = ln
	srv.mu.Unlock()
	return srv.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Close is
// called.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	slog.Info("server: listening", "address", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("server: accept failed", "err", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.handleConnection(ctx, conn)
		}()
	}
	wg.Wait()
	return nil
}

// handleConnection owns one socket for its entire lifetime: a dedicated
// writer goroutine drains the session's outbound FIFO while this
// goroutine performs blocking reads, decodes frames, and dispatches each
// one to completion before reading the next, per §5's scheduling model.
func (srv *Server) handleConnection(ctx context.Context, conn net.Conn) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}

	s := session.New(conn, host)
	srv.state.RegisterUnauth(s)

	go s.WritePump()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	defer srv.disconnect(s)

	fr := protocol.NewFrameReader(conn)
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			return
		}
		if !Dispatch(ctx, srv.state, s, frame) {
			return
		}
	}
}

// disconnect runs the §4.8 cleanup exactly once per connection and
// closes the socket.
func (srv *Server) disconnect(s *session.Session) {
	s.MarkClosed()
	handleDisconnect(srv.state, s)
	s.CloseOutbound()
	_ = s.Conn.Close()
}
