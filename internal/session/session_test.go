package session

import (
	"testing"
	"time"

	"github.com/arcaderelay/ggposrv/internal/testutil"
)

func TestAllowChat_TwoSecondFloor(t *testing.T) {
	s := New(nil, "127.0.0.1")
	t0 := time.Now()

	if !s.AllowChat(t0) {
		t.Fatal("first message should always be allowed")
	}
	if s.AllowChat(t0.Add(1 * time.Second)) {
		t.Fatal("message at +1s should be blocked")
	}
	if !s.AllowChat(t0.Add(2 * time.Second)) {
		t.Fatal("message at +2s should be allowed")
	}
}

func TestChallenge_AddPopHasRoundTrip(t *testing.T) {
	self := New(nil, "10.0.0.1")
	target := New(nil, "10.0.0.2")

	if self.HasChallenge(target.Host) {
		t.Fatal("should have no outstanding challenge yet")
	}

	self.AddChallenge(target.Host, target)
	if !self.HasChallenge(target.Host) {
		t.Fatal("challenge should be recorded")
	}

	got, ok := self.PopChallenge(target.Host)
	if !ok || got != target {
		t.Fatalf("PopChallenge = %v, %v, want target, true", got, ok)
	}
	if self.HasChallenge(target.Host) {
		t.Fatal("challenge should be gone after pop")
	}
}

func TestSend_DropsConnectionWhenOutboundFull(t *testing.T) {
	_, server := testutil.PipeConn(t)

	s := New(server, "127.0.0.1")
	for i := 0; i < outboundCapacity; i++ {
		s.Send(uint32(i), nil)
	}
	if s.IsClosed() {
		t.Fatal("should not be closed while under capacity")
	}

	s.Send(9999, nil)
	if !s.IsClosed() {
		t.Fatal("should be marked closed once the outbound queue overflows")
	}
}

func TestSetRole_ReflectsLatestValue(t *testing.T) {
	s := New(nil, "127.0.0.1")
	if s.Role() != RoleUnauth {
		t.Fatalf("default role = %v, want RoleUnauth", s.Role())
	}
	s.SetRole(RolePlayer)
	if s.Role() != RolePlayer {
		t.Fatalf("role after SetRole = %v, want RolePlayer", s.Role())
	}
}
