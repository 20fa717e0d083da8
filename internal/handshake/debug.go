package handshake

import (
	"log"

	"tibiaproxy/internal/proxy"
)

// DebugEventHandler logs every pipeline hook invocation. It never rewrites
// a frame.
type DebugEventHandler struct{}

func (h *DebugEventHandler) OnNewConnection(c *proxy.Connection) error {
	log.Printf("[Debug] #%d new connection from %s", c.ID, c.ClientAddr)
	return nil
}

func (h *DebugEventHandler) OnReady(c *proxy.Connection) error {
	log.Printf("[Debug] #%d ready, upstream %s", c.ID, c.ServerAddr)
	return nil
}

func (h *DebugEventHandler) OnFrame(c *proxy.Connection, origin proxy.Origin, payload []byte) ([]byte, error) {
	log.Printf("[Debug] #%d frame %d from %s (%d bytes)", c.ID, c.FrameCounter, origin, len(payload))
	return payload, nil
}

func (h *DebugEventHandler) OnDisconnect(c *proxy.Connection, reason proxy.DisconnectReason) {
	log.Printf("[Debug] #%d done: %s", c.ID, reason)
}
