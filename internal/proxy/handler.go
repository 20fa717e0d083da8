package proxy

// EventHandler is the middleware capability set every participant in the
// pipeline implements. Handlers run synchronously within the connection's
// task, in insertion order, and must not perform their own I/O.
type EventHandler interface {
	// OnNewConnection runs immediately after a client connection is
	// accepted, before the upstream connection is opened. Returning an
	// error is fatal to the connection.
	OnNewConnection(c *Connection) error

	// OnReady runs after the upstream connection is opened and both
	// sockets have TCP_NODELAY set. Returning an error is fatal.
	OnReady(c *Connection) error

	// OnFrame runs once per dispatched frame, in handler order, each
	// receiving the (possibly already rewritten) payload from the
	// previous handler. Returning an error is fatal to the connection.
	OnFrame(c *Connection, origin Origin, payload []byte) ([]byte, error)

	// OnDisconnect runs once, after the connection has torn down for any
	// reason. It cannot fail and cannot influence anything further.
	OnDisconnect(c *Connection, reason DisconnectReason)
}
