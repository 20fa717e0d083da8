package frame

import (
	"bytes"
	"encoding/binary"
	"testing"

	"tibiaproxy/internal/wire"
)

func roundTrip(t *testing.T, ft Type, payload []byte) []byte {
	t.Helper()
	enc := NewCodec()
	enc.SetFrameType(ft)
	wireBytes, err := enc.Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec := NewCodec()
	dec.SetFrameType(ft)
	got, consumed, err := dec.Decode(wireBytes)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(wireBytes) {
		t.Fatalf("consumed %d, want %d", consumed, len(wireBytes))
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %x, want %x", got, payload)
	}
	return wireBytes
}

func TestCodecRoundTripRaw(t *testing.T) {
	roundTrip(t, Raw(), []byte("hello world"))
	roundTrip(t, Raw(), nil)
}

func TestCodecRoundTripLengthPrefixed(t *testing.T) {
	roundTrip(t, LengthPrefixed(), []byte{0x01, 0x02, 0x03})
	roundTrip(t, LengthPrefixed(), nil)
}

func TestCodecRoundTripXTEA(t *testing.T) {
	key := wire.XTEAKey{0xdeadbeef, 0x1, 0x2, 0x3}
	roundTrip(t, XTEA(key), []byte("a login packet payload"))
	roundTrip(t, XTEA(key), nil)
}

// TestCodecEmptyPayloadChecksumIsZero pins down the edge case that an
// empty covered region checksums to zero rather than calling into the
// adler-32 routine on a zero-length slice.
func TestCodecEmptyPayloadChecksumIsZero(t *testing.T) {
	enc := NewCodec()
	enc.SetFrameType(Raw())
	out, err := enc.Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// header(2) + checksum(4), zero body.
	if len(out) != 6 {
		t.Fatalf("expected 6-byte frame, got %d", len(out))
	}
	checksum := binary.LittleEndian.Uint32(out[2:6])
	if checksum != 0 {
		t.Fatalf("expected zero checksum for empty payload, got %d", checksum)
	}
}

// TestCodecDecodeAcceptsMaxDeclaredLength pins the boundary: a declared body
// length equal to MaxDataSize (24588) must be accepted.
func TestCodecDecodeAcceptsMaxDeclaredLength(t *testing.T) {
	covered := make([]byte, MaxDataSize-4) // minus the 4-byte checksum prefix
	checksum := wire.Checksum(covered)

	buf := make([]byte, 0, headerSize+MaxDataSize)
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(MaxDataSize))
	buf = append(buf, hdr[:]...)
	var cs [4]byte
	binary.LittleEndian.PutUint32(cs[:], checksum)
	buf = append(buf, cs[:]...)
	buf = append(buf, covered...)

	c := NewCodec()
	c.SetFrameType(Raw())
	payload, consumed, err := c.Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(buf) {
		t.Fatalf("consumed %d, want %d", consumed, len(buf))
	}
	if !bytes.Equal(payload, covered) {
		t.Fatalf("payload mismatch")
	}
}

// TestCodecDecodeRejectsOversizedDeclaredLength pins the boundary: a
// declared body length of MaxDataSize+1 (24589) must be rejected with
// ErrOversizedFrame, consuming only the 2-byte header.
func TestCodecDecodeRejectsOversizedDeclaredLength(t *testing.T) {
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(MaxDataSize+1))

	c := NewCodec()
	c.SetFrameType(Raw())
	payload, consumed, err := c.Decode(hdr[:])
	if err != ErrOversizedFrame {
		t.Fatalf("got err %v, want ErrOversizedFrame", err)
	}
	if consumed != headerSize {
		t.Fatalf("consumed %d, want %d", consumed, headerSize)
	}
	if payload != nil {
		t.Fatalf("expected nil payload on error")
	}
}

func TestCodecDecodeRejectsChecksumMismatch(t *testing.T) {
	enc := NewCodec()
	enc.SetFrameType(Raw())
	buf, err := enc.Encode([]byte("payload bytes"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf[len(buf)-1] ^= 0xFF // flip every bit of the last payload byte without touching the header

	dec := NewCodec()
	dec.SetFrameType(Raw())
	_, consumed, err := dec.Decode(buf)
	if err != ErrChecksumMismatch {
		t.Fatalf("got err %v, want ErrChecksumMismatch", err)
	}
	if consumed != len(buf) {
		t.Fatalf("consumed %d, want %d", consumed, len(buf))
	}
}

func TestCodecDecodeRejectsTruncatedChecksumPrefix(t *testing.T) {
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], 2) // declares a 2-byte body, less than the 4-byte checksum
	buf := append(hdr[:], 0x01, 0x02)

	c := NewCodec()
	c.SetFrameType(Raw())
	_, consumed, err := c.Decode(buf)
	if err != ErrTruncatedInner {
		t.Fatalf("got err %v, want ErrTruncatedInner", err)
	}
	if consumed != len(buf) {
		t.Fatalf("consumed %d, want %d", consumed, len(buf))
	}
}

func TestCodecDecodeRejectsTruncatedInnerLength(t *testing.T) {
	ft := LengthPrefixed()
	// Inner length claims 10 bytes follow, but none do.
	inner := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(inner, 10)
	checksum := wire.Checksum(inner)

	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(checksumSize+len(inner)))
	var cs [4]byte
	binary.LittleEndian.PutUint32(cs[:], checksum)

	buf := append(append(hdr[:], cs[:]...), inner...)

	c := NewCodec()
	c.SetFrameType(ft)
	_, consumed, err := c.Decode(buf)
	if err != ErrTruncatedInner {
		t.Fatalf("got err %v, want ErrTruncatedInner", err)
	}
	if consumed != len(buf) {
		t.Fatalf("consumed %d, want %d", consumed, len(buf))
	}
}

func TestCodecDecodeRejectsXteaMisalignment(t *testing.T) {
	key := wire.XTEAKey{1, 2, 3, 4}
	// 3 bytes of covered region (after the 4-byte checksum), not a
	// multiple of 8: construct directly since Encode always pads to a
	// valid XTEA boundary and would never produce this on its own.
	covered := make([]byte, checksumSize+3)
	checksum := wire.Checksum(covered[checksumSize:])
	binary.LittleEndian.PutUint32(covered[:checksumSize], checksum)

	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(len(covered)))
	buf := append(hdr[:], covered...)

	c := NewCodec()
	c.SetFrameType(XTEA(key))
	_, consumed, err := c.Decode(buf)
	if err != ErrXteaMisaligned {
		t.Fatalf("got err %v, want ErrXteaMisaligned", err)
	}
	if consumed != len(buf) {
		t.Fatalf("consumed %d, want %d", consumed, len(buf))
	}
}

func TestCodecDecodeIncompleteBufferReturnsZeroConsumed(t *testing.T) {
	c := NewCodec()
	c.SetFrameType(Raw())

	payload, consumed, err := c.Decode(nil)
	if err != nil || payload != nil || consumed != 0 {
		t.Fatalf("empty buffer: got (%v, %d, %v), want (nil, 0, nil)", payload, consumed, err)
	}

	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], 100)
	payload, consumed, err = c.Decode(hdr[:])
	if err != nil || payload != nil || consumed != 0 {
		t.Fatalf("header-only buffer: got (%v, %d, %v), want (nil, 0, nil)", payload, consumed, err)
	}
}
