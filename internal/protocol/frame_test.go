package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestWriteReadFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := NewEncoder().U32(uint32(OpAuth)).String("alice").String("pw").U32(6009).Payload()

	if err := WriteFrame(&buf, 1, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	fr := NewFrameReader(&buf)
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Seq != 1 {
		t.Fatalf("seq = %d, want 1", frame.Seq)
	}
	if frame.Opcode() != OpAuth {
		t.Fatalf("opcode = %v, want OpAuth", frame.Opcode())
	}

	d := NewDecoder(frame.Payload)
	if nick := d.String(); nick != "alice" {
		t.Fatalf("nick = %q, want alice", nick)
	}
	if pw := d.String(); pw != "pw" {
		t.Fatalf("password = %q, want pw", pw)
	}
	if port := d.U32(); port != 6009 {
		t.Fatalf("port = %d, want 6009", port)
	}
	if d.Err() != nil {
		t.Fatalf("unexpected decode error: %v", d.Err())
	}
}

func TestReadFrame_MultipleFramesOneRead(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, 1, []byte("aaaa")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFrame(&buf, 2, []byte("bbbb")); err != nil {
		t.Fatal(err)
	}

	fr := NewFrameReader(&buf)
	f1, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("first ReadFrame: %v", err)
	}
	f2, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("second ReadFrame: %v", err)
	}
	if string(f1.Payload) != "aaaa" || string(f2.Payload) != "bbbb" {
		t.Fatalf("got payloads %q, %q", f1.Payload, f2.Payload)
	}
}

func TestReadFrame_PartialReadAcrossWrites(t *testing.T) {
	pr, pw := io.Pipe()
	fr := NewFrameReader(pr)

	done := make(chan Frame, 1)
	errCh := make(chan error, 1)
	go func() {
		f, err := fr.ReadFrame()
		if err != nil {
			errCh <- err
			return
		}
		done <- f
	}()

	full := NewEncoder().U32(uint32(OpPrivmsg)).String("hello world").Payload()
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], uint32(4+len(full)))
	binary.BigEndian.PutUint32(header[4:8], 99)

	go func() {
		_, _ = pw.Write(header[:5])
		_, _ = pw.Write(header[5:])
		_, _ = pw.Write(full[:3])
		_, _ = pw.Write(full[3:])
	}()

	select {
	case err := <-errCh:
		t.Fatalf("ReadFrame error: %v", err)
	case f := <-done:
		if f.Seq != 99 {
			t.Fatalf("seq = %d, want 99", f.Seq)
		}
		d := NewDecoder(f.Payload)
		if msg := d.String(); msg != "hello world" {
			t.Fatalf("msg = %q, want %q", msg, "hello world")
		}
	}
}

func TestSeqIsPush(t *testing.T) {
	if !(Frame{Seq: PushSeq(PushChat)}).IsPush() {
		t.Fatal("push sequence should report IsPush")
	}
	if (Frame{Seq: 42}).IsPush() {
		t.Fatal("request sequence should not report IsPush")
	}
}
