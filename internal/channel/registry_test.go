package channel

import (
	"testing"

	"github.com/arcaderelay/ggposrv/internal/session"
)

func TestJoinThenPart_RestoresMemberSet(t *testing.T) {
	reg := NewRegistry(DefaultCatalog())
	lobby, ok := reg.Get("lobby")
	if !ok {
		t.Fatal("expected lobby channel in default catalog")
	}

	before := lobby.Count()
	s := session.New(nil, "127.0.0.1")
	lobby.Join(s)
	if lobby.Count() != before+1 {
		t.Fatalf("count after join = %d, want %d", lobby.Count(), before+1)
	}
	lobby.Part(s)
	if lobby.Count() != before {
		t.Fatalf("count after part = %d, want %d (prior contents)", lobby.Count(), before)
	}
}

func TestGet_UnknownChannelRejected(t *testing.T) {
	reg := NewRegistry(DefaultCatalog())
	if _, ok := reg.Get("not-a-real-rom"); ok {
		t.Fatal("unknown channel name should not be found")
	}
}

func TestDefaultCatalog_HasSpecScenarioChannels(t *testing.T) {
	reg := NewRegistry(DefaultCatalog())
	for _, name := range []string{"lobby", "sfiii3n", "kof98"} {
		if _, ok := reg.Get(name); !ok {
			t.Fatalf("expected catalog to contain %q", name)
		}
	}
}
