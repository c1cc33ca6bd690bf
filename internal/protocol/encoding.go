package protocol

import (
	"encoding/binary"
	"fmt"
)

// Decoder reads length-prefixed strings and big-endian integers out of a
// request payload in order, tracking a cursor and the first error
// encountered so callers don't need to check after every field.
type Decoder struct {
	buf []byte
	pos int
	err error
}

// NewDecoder returns a Decoder over payload, skipping the leading 4-byte
// opcode (the caller already dispatched on it).
func NewDecoder(payload []byte) *Decoder {
	d := &Decoder{buf: payload}
	d.pos = 4
	if len(payload) < 4 {
		d.err = fmt.Errorf("protocol: payload too short for opcode")
	}
	return d
}

// NewPushDecoder returns a Decoder over a push frame's payload, which
// carries no leading opcode field (unlike a request payload).
func NewPushDecoder(payload []byte) *Decoder {
	return &Decoder{buf: payload}
}

// Err returns the first decoding error, if any.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if d.pos+n > len(d.buf) {
		d.err = fmt.Errorf("protocol: need %d bytes at offset %d, have %d", n, d.pos, len(d.buf))
		return false
	}
	return true
}

// U32 reads one big-endian uint32.
func (d *Decoder) U32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

// Bytes reads a fixed number of raw bytes.
func (d *Decoder) Bytes(n int) []byte {
	if !d.need(n) {
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// String reads a length-prefixed UTF-8 string.
func (d *Decoder) String() string {
	n := int(d.U32())
	if d.err != nil {
		return ""
	}
	return string(d.Bytes(n))
}

// Rest returns every byte from the cursor to the end of the payload,
// e.g. for gamebuffer/savestate's trailing raw blob.
func (d *Decoder) Rest() []byte {
	if d.err != nil {
		return nil
	}
	b := d.buf[d.pos:]
	d.pos = len(d.buf)
	return b
}

// Encoder builds a reply or push payload field by field.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// U32 appends a big-endian uint32.
func (e *Encoder) U32(v uint32) *Encoder {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

// String appends a length-prefixed UTF-8 string.
func (e *Encoder) String(s string) *Encoder {
	e.U32(uint32(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// Bytes appends raw bytes with no length prefix.
func (e *Encoder) Bytes(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Payload returns the accumulated payload.
func (e *Encoder) Payload() []byte {
	return e.buf
}
