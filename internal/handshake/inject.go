package handshake

import (
	"log"

	"tibiaproxy/internal/packet"
	"tibiaproxy/internal/proxy"
)

// GameServerInjector rewrites every world's ip/port in a CharacterList
// packet to the operator-configured game-proxy endpoint, so the client's
// subsequent game connection is steered back through this proxy. It acts
// on any CharacterList frame it sees from the server, not only the
// handshake's canonical second frame.
type GameServerInjector struct {
	Host string
	Port uint16
}

func (h *GameServerInjector) OnNewConnection(c *proxy.Connection) error { return nil }
func (h *GameServerInjector) OnReady(c *proxy.Connection) error         { return nil }

func (h *GameServerInjector) OnFrame(c *proxy.Connection, origin proxy.Origin, payload []byte) ([]byte, error) {
	if origin != proxy.OriginServer || len(payload) == 0 || payload[0] != packet.LoginServerCharList {
		return payload, nil
	}

	charList, err := packet.ParseCharacterList(payload[1:])
	if err != nil {
		// Not a shape we understand; forward it unmodified rather than
		// failing the connection over a packet we don't need to touch.
		return payload, nil
	}

	for i := range charList.Worlds {
		charList.Worlds[i].IP = h.Host
		charList.Worlds[i].Port = h.Port
	}

	log.Printf("[GameServerInjector] #%d rewrote %d world(s) to %s:%d", c.ID, len(charList.Worlds), h.Host, h.Port)

	out := make([]byte, 0, len(payload))
	out = append(out, packet.LoginServerCharList)
	out = append(out, packet.WriteCharacterList(charList)...)
	return out, nil
}

func (h *GameServerInjector) OnDisconnect(c *proxy.Connection, reason proxy.DisconnectReason) {}
