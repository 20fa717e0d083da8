// Package handshake implements the per-connection handshake state
// machines for both connection roles (login and game) as a small set of
// proxy.EventHandler implementations. Each observes the first one or two
// frames of a Connection, extracts the XTEA session key from the
// RSA-sealed login packet, and switches the Connection's FrameType at the
// correct moment.
package handshake

import "errors"

// ErrUnexpectedOrigin is returned when a frame arrives from the party
// that is not expected to speak next (the server speaking first on a
// login connection, or a second frame arriving from the client on a
// login connection once streaming has begun).
var ErrUnexpectedOrigin = errors.New("handshake: frame arrived from unexpected origin")

// ErrWrongFirstPacket is returned when the handshake expected an
// AccountLogin or GameLogin packet and received something else.
var ErrWrongFirstPacket = errors.New("handshake: expected AccountLogin/GameLogin packet")
