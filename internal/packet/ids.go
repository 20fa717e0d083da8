// Package packet implements the minimal closed set of packet shapes the
// handshake logic needs to understand: AccountLogin and GameLogin on the
// client side, Nonce and CharacterList on the server side. Every other
// packet ID is passed through by the proxy without being parsed here.
package packet

import "fmt"

// Client-direction packet IDs (login and game connections share this ID
// space from the client's point of view).
const (
	ClientAccountLogin byte = 0x01
	ClientGameLogin    byte = 0x0A
	ClientPing         byte = 0x1D
	ClientPong         byte = 0x1E
	ClientWalkNorth    byte = 0x65
	ClientWalkEast     byte = 0x66
	ClientWalkSouth    byte = 0x67
	ClientWalkWest     byte = 0x68
)

// Login-server-direction packet IDs. Note the deliberate overlap with
// ClientGameLogin (0x0A): decoders must be selected by connection
// direction, never shared.
const (
	LoginServerError      byte = 0x0A
	LoginServerError2     byte = 0x0B
	LoginServerMotd       byte = 0x14
	LoginServerSessionKey byte = 0x28
	LoginServerCharList   byte = 0x64
)

// Game-server-direction packet IDs relevant to the handshake; every other
// ID arriving on a game connection is forwarded opaquely.
const (
	GameServerNonce byte = 0x1F
	GameServerPing  byte = 0x1D
	GameServerPong  byte = 0x1E
)

// UnknownPacketError describes a packet ID outside the closed set this
// package recognises. No function in this package returns it: each Parse*
// function takes a body whose ID byte the caller has already checked and
// stripped, and there is no parser that dispatches on the ID byte.
type UnknownPacketError struct {
	ID byte
}

func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("packet: unknown packet id 0x%02X", e.ID)
}
