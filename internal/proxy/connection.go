// Package proxy implements the orchestrator that owns a pair of
// FrameCodecs per accepted connection, runs an ordered list of
// EventHandlers as frame-level middleware, and forwards frames between a
// client and an upstream server until either side closes or an error
// occurs.
package proxy

import (
	"net"

	"tibiaproxy/internal/frame"
)

// Origin tags which side of a Connection a frame came from.
type Origin int

const (
	OriginClient Origin = iota
	OriginServer
)

func (o Origin) String() string {
	if o == OriginClient {
		return "client"
	}
	return "server"
}

func (o Origin) opposite() Origin {
	if o == OriginClient {
		return OriginServer
	}
	return OriginClient
}

// DisconnectKind distinguishes a clean close from either side versus a
// fatal error.
type DisconnectKind int

const (
	DisconnectClosed DisconnectKind = iota
	DisconnectError
)

// DisconnectReason is handed to every EventHandler's OnDisconnect hook.
type DisconnectReason struct {
	Kind   DisconnectKind
	Origin Origin // meaningful when Kind == DisconnectClosed: who closed first
	Err    error  // meaningful when Kind == DisconnectError
}

func (r DisconnectReason) String() string {
	if r.Kind == DisconnectClosed {
		return "closed by " + r.Origin.String()
	}
	return "error: " + r.Err.Error()
}

// Connection is the per-accepted-client record described by the data
// model: a monotonic id, both peer addresses, the authoritative FrameType,
// and a monotonically increasing frame counter. It is single-owner —
// exactly one goroutine (the pipeline's forwarding loop for this
// connection) ever touches it, so no internal locking is required.
//
// State is a slot EventHandlers may use to stash their own per-connection
// state (the EventHandler list itself is shared, read-only, across every
// connection, so per-connection state cannot live on the handler).
type Connection struct {
	ID           uint64
	ClientAddr   net.Addr
	ServerAddr   net.Addr
	FrameType    frame.Type
	FrameCounter uint64
	State        interface{}
}

// Addr returns the address of the given origin's endpoint.
func (c *Connection) Addr(o Origin) net.Addr {
	if o == OriginClient {
		return c.ClientAddr
	}
	return c.ServerAddr
}

// FirstFrame reports whether the connection has not yet dispatched any
// frame in either direction.
func (c *Connection) FirstFrame() bool {
	return c.FrameCounter == 0
}

// SetFrameType installs t as the connection's authoritative FrameType. It
// takes effect for both FrameCodecs before their next decode/encode, per
// the pipeline's propagation step.
func (c *Connection) SetFrameType(t frame.Type) {
	c.FrameType = t
}
