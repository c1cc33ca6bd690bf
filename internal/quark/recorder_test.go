package quark

import (
	"bytes"
	"testing"
)

func TestRecorder_RecordAndReplayRoundTrip(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	token := "challenge-0001-1700000000.00"

	if r.ArchiveExists(token) {
		t.Fatal("archive should not exist before recording")
	}

	gamebuffer := []byte("framed-gamebuffer-bytes")
	if err := r.WriteGamebuffer(token, gamebuffer); err != nil {
		t.Fatalf("WriteGamebuffer: %v", err)
	}
	if err := r.WriteNicknames(token, "alice", "bob"); err != nil {
		t.Fatalf("WriteNicknames: %v", err)
	}

	savestate1 := bytes.Repeat([]byte{0x01}, SavestateChunkSize)
	savestate2 := bytes.Repeat([]byte{0x02}, 50)
	if err := r.AppendSavestate(token, savestate1); err != nil {
		t.Fatalf("AppendSavestate 1: %v", err)
	}
	if err := r.AppendSavestate(token, savestate2); err != nil {
		t.Fatalf("AppendSavestate 2: %v", err)
	}

	if !r.ArchiveExists(token) {
		t.Fatal("archive should exist after recording")
	}

	nick1, nick2, err := r.ReadNicknames(token)
	if err != nil || nick1 != "alice" || nick2 != "bob" {
		t.Fatalf("ReadNicknames = %q, %q, %v", nick1, nick2, err)
	}

	gotGamebuffer, err := r.ReadGamebuffer(token)
	if err != nil || !bytes.Equal(gotGamebuffer, gamebuffer) {
		t.Fatalf("ReadGamebuffer mismatch: %v, err=%v", gotGamebuffer, err)
	}

	chunks, err := r.ReadSavestateChunks(token)
	if err != nil {
		t.Fatalf("ReadSavestateChunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if len(chunks[0]) != SavestateChunkSize || len(chunks[1]) != 50 {
		t.Fatalf("chunk sizes = %d, %d", len(chunks[0]), len(chunks[1]))
	}
}

func TestRecorder_WriteGamebufferDoesNotOverwrite(t *testing.T) {
	r, err := NewRecorder(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	token := "challenge-0002-1700000001.01"

	if err := r.WriteGamebuffer(token, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteGamebuffer(token, []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := r.ReadGamebuffer(token)
	if err != nil || string(got) != "first" {
		t.Fatalf("ReadGamebuffer = %q, want %q (first write preserved)", got, "first")
	}
}
