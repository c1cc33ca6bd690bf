package rendezvous

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		s.Close()
	})
	go s.Serve(ctx)
	return s
}

func dialPeer(t *testing.T, serverAddr net.Addr) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, serverAddr.(*net.UDPAddr))
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_FirstPeerReceivesAck(t *testing.T) {
	s := startTestServer(t)
	conn := dialPeer(t, s.Addr())

	if _, err := conn.Write([]byte("challenge-0001-1700000000.00")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read ack: %v", err)
	}
	if got := string(buf[:n]); got != "ok challenge-0001-1700000000.00" {
		t.Fatalf("ack = %q", got)
	}
}

func TestServer_SecondPeerCompletesPairing(t *testing.T) {
	s := startTestServer(t)
	token := "challenge-0002-1700000001.01"

	alice := dialPeer(t, s.Addr())
	bob := dialPeer(t, s.Addr())

	if _, err := alice.Write([]byte(token)); err != nil {
		t.Fatal(err)
	}
	alice.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 64)
	if _, err := alice.Read(buf); err != nil {
		t.Fatalf("alice ack: %v", err)
	}

	if _, err := bob.Write([]byte(token)); err != nil {
		t.Fatal(err)
	}
	bob.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := bob.Read(buf); err != nil {
		t.Fatalf("bob ack: %v", err)
	}

	aliceLocal := alice.LocalAddr().(*net.UDPAddr)
	bobLocal := bob.LocalAddr().(*net.UDPAddr)

	alice.SetReadDeadline(time.Now().Add(time.Second))
	n, err := alice.Read(buf)
	if err != nil {
		t.Fatalf("alice peer-addr read: %v", err)
	}
	if n != 6 {
		t.Fatalf("alice peer-addr len = %d, want 6", n)
	}
	if port := binary.LittleEndian.Uint16(buf[4:6]); int(port) != bobLocal.Port {
		t.Fatalf("alice learned port %d, want bob's port %d", port, bobLocal.Port)
	}

	bob.SetReadDeadline(time.Now().Add(time.Second))
	n, err = bob.Read(buf)
	if err != nil {
		t.Fatalf("bob peer-addr read: %v", err)
	}
	if port := binary.LittleEndian.Uint16(buf[4:6]); int(port) != aliceLocal.Port {
		t.Fatalf("bob learned port %d, want alice's port %d", port, aliceLocal.Port)
	}
}

func TestEncodeAddr_RejectsIPv6(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("::1"), Port: 7001}
	if _, err := EncodeAddr(addr); err == nil {
		t.Fatal("expected error encoding an IPv6 address")
	}
}
