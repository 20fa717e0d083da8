// Package frame implements the stateful byte-stream codec that turns a raw
// TCP stream into logical Frames and back, under the three framing modes
// the legacy client speaks: Raw, LengthPrefixed, and XTEA.
package frame

import "errors"

// The error taxonomy from the handshake/codec design. Every one of these
// is fatal to the enclosing connection; the codec never attempts
// resynchronisation.
var (
	ErrOversizedFrame   = errors.New("frame: declared body length exceeds limit")
	ErrChecksumMismatch = errors.New("frame: adler-32 checksum mismatch")
	ErrXteaMisaligned   = errors.New("frame: xtea-covered region is not a multiple of 8 bytes")
	ErrTruncatedInner   = errors.New("frame: inner length exceeds available bytes")
)
