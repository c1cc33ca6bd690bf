package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/arcaderelay/ggposrv/internal/challenge"
	"github.com/arcaderelay/ggposrv/internal/channel"
	"github.com/arcaderelay/ggposrv/internal/config"
	"github.com/arcaderelay/ggposrv/internal/geo"
	"github.com/arcaderelay/ggposrv/internal/protocol"
	"github.com/arcaderelay/ggposrv/internal/quark"
	"github.com/arcaderelay/ggposrv/internal/testutil"
)

// fakeAuth is an in-memory Authenticator standing in for a real
// auth.Store, so the accept-loop tests exercise real TCP framing
// without a database.
type fakeAuth struct {
	users map[string]string
}

func newFakeAuth(users map[string]string) *fakeAuth {
	return &fakeAuth{users: users}
}

func (f *fakeAuth) Authenticate(ctx context.Context, nick, password string) (bool, error) {
	want, ok := f.users[nick]
	return ok && want == password, nil
}

func newTestState(t *testing.T) *State {
	t.Helper()
	recorder, err := quark.NewRecorder(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	channels := channel.NewRegistry(channel.DefaultCatalog())
	quarks := quark.NewManager()
	broker := challenge.NewBroker(quarks)
	authenticator := newFakeAuth(map[string]string{"alice": "secret", "bob": "secret"})
	return NewState(config.Default(), channels, quarks, broker, recorder, authenticator, geo.NullLocator{})
}

// dialAuthenticated starts srv in the background, dials it, and runs
// connect+auth for nick, returning the live connection and frame
// reader positioned right after the auth-success presence push.
func dialAuthenticated(t *testing.T, ctx context.Context, srv *Server, addr string, nick, password string) (net.Conn, *protocol.FrameReader) {
	t.Helper()
	if err := testutil.WaitForTCPReady(addr, 2*time.Second); err != nil {
		t.Fatalf("WaitForTCPReady: %v", err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	fr := protocol.NewFrameReader(conn)

	connectPayload := protocol.NewEncoder().U32(uint32(protocol.OpConnect)).Payload()
	if err := protocol.WriteFrame(conn, 1, connectPayload); err != nil {
		t.Fatalf("write connect: %v", err)
	}
	if _, err := fr.ReadFrame(); err != nil {
		t.Fatalf("read connect ack: %v", err)
	}

	authPayload := protocol.NewEncoder().U32(uint32(protocol.OpAuth)).String(nick).String(password).U32(7001).Payload()
	if err := protocol.WriteFrame(conn, 2, authPayload); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	ackFrame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("read auth ack: %v", err)
	}
	if len(ackFrame.Payload) != 4 {
		t.Fatalf("auth ack payload = %v, want 4 zero bytes", ackFrame.Payload)
	}
	if _, err := fr.ReadFrame(); err != nil {
		t.Fatalf("read auth-success presence push: %v", err)
	}
	return conn, fr
}

// TestServer_ConnectAuthMotd runs the first steps of the specification's
// lobby scenario end to end over a real TCP socket: connect, auth, motd.
func TestServer_ConnectAuthMotd(t *testing.T) {
	st := newTestState(t)
	srv := New(st)

	ctx, cancel := testutil.ContextWithCancel(t)
	defer cancel()

	ln, addr := testutil.ListenTCP(t)
	go srv.Serve(ctx, ln)

	conn, fr := dialAuthenticated(t, ctx, srv, addr, "alice", "secret")
	defer conn.Close()

	motdPayload := protocol.NewEncoder().U32(uint32(protocol.OpMotd)).Payload()
	if err := protocol.WriteFrame(conn, 3, motdPayload); err != nil {
		t.Fatalf("write motd: %v", err)
	}
	if _, err := fr.ReadFrame(); err != nil {
		t.Fatalf("read motd ack: %v", err)
	}
	motdFrame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("read motd push: %v", err)
	}
	d := protocol.NewPushDecoder(motdFrame.Payload)
	if motd := d.String(); motd != st.Motd {
		t.Fatalf("motd push = %q, want %q", motd, st.Motd)
	}
}

// TestServer_AuthFailureNacks confirms a bad password is rejected
// without ever promoting the connection into the client registry.
func TestServer_AuthFailureNacks(t *testing.T) {
	st := newTestState(t)
	srv := New(st)

	ctx, cancel := testutil.ContextWithCancel(t)
	defer cancel()

	ln, addr := testutil.ListenTCP(t)
	go srv.Serve(ctx, ln)
	if err := testutil.WaitForTCPReady(addr, 2*time.Second); err != nil {
		t.Fatalf("WaitForTCPReady: %v", err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	fr := protocol.NewFrameReader(conn)

	authPayload := protocol.NewEncoder().U32(uint32(protocol.OpAuth)).String("alice").String("wrong").U32(7001).Payload()
	if err := protocol.WriteFrame(conn, 1, authPayload); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("read auth reply: %v", err)
	}
	d := protocol.NewPushDecoder(frame.Payload)
	if code := d.U32(); code != protocol.NackAuthFailed {
		t.Fatalf("nack code = %d, want %d", code, protocol.NackAuthFailed)
	}
	if _, ok := st.LookupNick("alice"); ok {
		t.Fatal("alice should not be registered after a failed auth")
	}
}

// TestServer_JoinBroadcastsPresenceToChannel exercises §4.4: joining a
// channel pushes the established frame, then a presence broadcast seen
// by every member including the joiner.
func TestServer_JoinBroadcastsPresenceToChannel(t *testing.T) {
	st := newTestState(t)
	srv := New(st)

	ctx, cancel := testutil.ContextWithCancel(t)
	defer cancel()

	ln, addr := testutil.ListenTCP(t)
	go srv.Serve(ctx, ln)

	aliceConn, aliceFr := dialAuthenticated(t, ctx, srv, addr, "alice", "secret")
	defer aliceConn.Close()
	bobConn, bobFr := dialAuthenticated(t, ctx, srv, addr, "bob", "secret")
	defer bobConn.Close()

	joinPayload := protocol.NewEncoder().U32(uint32(protocol.OpJoin)).String("lobby").Payload()
	if err := protocol.WriteFrame(aliceConn, 10, joinPayload); err != nil {
		t.Fatalf("write join: %v", err)
	}
	if _, err := aliceFr.ReadFrame(); err != nil {
		t.Fatalf("read join ack: %v", err)
	}
	if _, err := aliceFr.ReadFrame(); err != nil {
		t.Fatalf("read established push: %v", err)
	}
	if _, err := aliceFr.ReadFrame(); err != nil {
		t.Fatalf("read alice's own presence broadcast: %v", err)
	}

	if err := protocol.WriteFrame(bobConn, 10, joinPayload); err != nil {
		t.Fatalf("write join: %v", err)
	}
	if _, err := bobFr.ReadFrame(); err != nil {
		t.Fatalf("read join ack: %v", err)
	}
	if _, err := bobFr.ReadFrame(); err != nil {
		t.Fatalf("read established push: %v", err)
	}

	bobPresence, err := bobFr.ReadFrame()
	if err != nil {
		t.Fatalf("read bob's own presence broadcast: %v", err)
	}
	p := protocol.NewPushDecoder(bobPresence.Payload).DecodePresence()
	if p.Nick != "bob" {
		t.Fatalf("bob's presence broadcast nick = %q, want bob", p.Nick)
	}

	alicePresence, err := aliceFr.ReadFrame()
	if err != nil {
		t.Fatalf("read alice's view of bob's join: %v", err)
	}
	p = protocol.NewPushDecoder(alicePresence.Payload).DecodePresence()
	if p.Nick != "bob" {
		t.Fatalf("alice should see bob's presence broadcast, got nick=%q", p.Nick)
	}
}

// TestServer_DisconnectForgetsClient exercises §4.8: closing a client's
// socket must free its nick from the registry, not just its local fd.
func TestServer_DisconnectForgetsClient(t *testing.T) {
	st := newTestState(t)
	srv := New(st)

	ctx, cancel := testutil.ContextWithCancel(t)
	defer cancel()

	ln, addr := testutil.ListenTCP(t)
	go srv.Serve(ctx, ln)

	conn, _ := dialAuthenticated(t, ctx, srv, addr, "alice", "secret")
	if _, ok := st.LookupNick("alice"); !ok {
		t.Fatal("alice should be registered right after auth")
	}

	conn.Close()

	testutil.WaitForCleanup(t, func() bool {
		_, ok := st.LookupNick("alice")
		return !ok
	}, 2*time.Second)
}
