package frame

import (
	"encoding/binary"

	"tibiaproxy/internal/wire"
)

const (
	headerSize   = 2
	checksumSize = 4
	// MaxFrameSize is the largest frame permitted on the wire, header
	// included.
	MaxFrameSize = 24590
	// MaxDataSize is the largest declared body length (the header's u16
	// value) permitted on the wire.
	MaxDataSize = MaxFrameSize - headerSize
)

// Kind distinguishes the three framing modes a FrameCodec may operate
// under. The Kind governs both how the next inbound frame is decoded and
// how the next outbound frame is encoded.
type Kind int

const (
	KindRaw Kind = iota
	KindLengthPrefixed
	KindXTEA
)

// Type is the tagged FrameType: Raw, LengthPrefixed, or XTEA-with-key. A
// Codec's Type may be replaced between frames; replacing it mid-frame is
// the caller's responsibility to avoid (the pipeline only ever switches
// Type at a frame boundary, never mid-decode).
type Type struct {
	Kind Kind
	Key  wire.XTEAKey
}

// Raw returns the unencrypted, unprefixed frame type.
func Raw() Type { return Type{Kind: KindRaw} }

// LengthPrefixed returns the frame type used for the server's Nonce
// bootstrap: an inner u16 LE length precedes the payload, but there is no
// encryption.
func LengthPrefixed() Type { return Type{Kind: KindLengthPrefixed} }

// XTEA returns the frame type used for the remainder of a session once a
// key has been established during the handshake.
func XTEA(key wire.XTEAKey) Type { return Type{Kind: KindXTEA, Key: key} }

// Codec is a stateful half-duplex framer for one TCP direction. It owns a
// DecoderState and a FrameType; it is not safe for concurrent use, which
// matches the single-owner Connection model — each direction has exactly
// one Codec instance.
type Codec struct {
	// declaredLen < 0 means AwaitingHeader; otherwise AwaitingBody(n).
	declaredLen int
	frameType   Type
}

// NewCodec returns a Codec starting in AwaitingHeader state with FrameType
// Raw.
func NewCodec() *Codec {
	return &Codec{declaredLen: -1, frameType: Raw()}
}

// SetFrameType installs t as the codec's current FrameType. The caller must
// only do this at a frame boundary.
func (c *Codec) SetFrameType(t Type) {
	c.frameType = t
}

// FrameType reports the codec's current FrameType.
func (c *Codec) FrameType() Type {
	return c.frameType
}

// Decode consumes the minimum prefix of buf necessary to advance state. It
// returns the decoded payload and the number of bytes consumed from buf
// when a frame was fully assembled; otherwise it returns a nil payload and
// zero consumed, and the caller must supply more bytes before calling
// again. On error, consumed still reports how many bytes were read off the
// wire for the failed frame (just the 2-byte header for an oversized-frame
// rejection, header+body for every other failure), since those bytes are
// gone from the stream regardless of the fact that the connection is now
// being torn down.
func (c *Codec) Decode(buf []byte) (payload []byte, consumed int, err error) {
	if c.declaredLen < 0 {
		if len(buf) < headerSize {
			return nil, 0, nil
		}
		n := int(binary.LittleEndian.Uint16(buf))
		if n > MaxDataSize {
			return nil, headerSize, ErrOversizedFrame
		}
		c.declaredLen = n
	}

	n := c.declaredLen
	total := headerSize + n
	if len(buf) < total {
		return nil, 0, nil
	}

	body := buf[headerSize:total]
	c.declaredLen = -1 // frame (success or failure) is now fully off the wire

	if len(body) < checksumSize {
		return nil, total, ErrTruncatedInner
	}

	recvChecksum := binary.LittleEndian.Uint32(body[:checksumSize])
	covered := body[checksumSize:]

	var checksum uint32
	if len(covered) > 0 {
		checksum = wire.Checksum(covered)
	}
	if recvChecksum != checksum {
		return nil, total, ErrChecksumMismatch
	}

	if c.frameType.Kind == KindXTEA {
		if len(covered)%8 != 0 {
			return nil, total, ErrXteaMisaligned
		}
		if err := wire.XTEADecrypt(c.frameType.Key, covered); err != nil {
			return nil, total, err
		}
	}

	if c.frameType.Kind == KindRaw {
		return covered, total, nil
	}

	if len(covered) < headerSize {
		return nil, total, ErrTruncatedInner
	}
	m := int(binary.LittleEndian.Uint16(covered[:headerSize]))
	inner := covered[headerSize:]
	if m > len(inner) {
		return nil, total, ErrTruncatedInner
	}
	return inner[:m], total, nil
}

// Encode lays payload out on the wire according to the codec's current
// FrameType: header, checksum, optional inner length, payload, optional
// XTEA padding, then (for XTEA) in-place encryption of everything after
// the checksum.
func (c *Codec) Encode(payload []byte) ([]byte, error) {
	m := len(payload)

	var n int
	prefixed := c.frameType.Kind == KindLengthPrefixed || c.frameType.Kind == KindXTEA

	switch c.frameType.Kind {
	case KindRaw:
		n = checksumSize + m
	case KindLengthPrefixed:
		n = checksumSize + headerSize + m
	case KindXTEA:
		base := headerSize + m
		padding := (8 - base%8) % 8
		n = checksumSize + base + padding
	}

	if n > MaxDataSize {
		return nil, ErrOversizedFrame
	}

	out := make([]byte, 0, headerSize+n)
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(n))
	out = append(out, hdr[:]...)

	checksumPos := len(out)
	out = append(out, 0, 0, 0, 0)

	bodyStart := len(out)
	if prefixed {
		var innerLen [headerSize]byte
		binary.LittleEndian.PutUint16(innerLen[:], uint16(m))
		out = append(out, innerLen[:]...)
	}
	out = append(out, payload...)

	if c.frameType.Kind == KindXTEA {
		base := headerSize + m
		padding := (8 - base%8) % 8
		for i := 0; i < padding; i++ {
			out = append(out, 0x33)
		}
	}

	covered := out[bodyStart:]
	if c.frameType.Kind == KindXTEA {
		if err := wire.XTEAEncrypt(c.frameType.Key, covered); err != nil {
			return nil, err
		}
	}

	var checksum uint32
	if len(covered) > 0 {
		checksum = wire.Checksum(covered)
	}
	binary.LittleEndian.PutUint32(out[checksumPos:checksumPos+checksumSize], checksum)

	return out, nil
}
