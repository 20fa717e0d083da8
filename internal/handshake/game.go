package handshake

import (
	"log"

	"tibiaproxy/internal/frame"
	"tibiaproxy/internal/packet"
	"tibiaproxy/internal/proxy"
)

type gameState struct {
	aborted bool
}

// GameHandshaker implements the game-connection role of the handshake
// state machine: AwaitingServerNonce (FrameType LengthPrefixed) ->
// AwaitingClientLogin (FrameType Raw) -> Streaming(key) (FrameType XTEA).
// The nonce itself is never interpreted; only its framing is special.
type GameHandshaker struct{}

func (h *GameHandshaker) OnNewConnection(c *proxy.Connection) error {
	c.State = &gameState{}
	c.SetFrameType(frame.LengthPrefixed())
	return nil
}

func (h *GameHandshaker) OnReady(c *proxy.Connection) error {
	return nil
}

func (h *GameHandshaker) OnFrame(c *proxy.Connection, origin proxy.Origin, payload []byte) ([]byte, error) {
	st := c.State.(*gameState)
	if st.aborted {
		return payload, nil
	}

	switch c.FrameCounter {
	case 0:
		if origin == proxy.OriginClient {
			st.aborted = true
			return nil, ErrUnexpectedOrigin
		}
		// The nonce is opaque; only the framing transition matters. It
		// takes effect before the next decode on either side.
		c.SetFrameType(frame.Raw())
		return payload, nil

	case 1:
		if origin == proxy.OriginServer {
			st.aborted = true
			return nil, ErrUnexpectedOrigin
		}
		if len(payload) == 0 || payload[0] != packet.ClientGameLogin {
			st.aborted = true
			return nil, ErrWrongFirstPacket
		}
		login, err := packet.ParseGameLogin(payload[1:])
		if err != nil {
			st.aborted = true
			return nil, err
		}
		log.Printf("[GameHandshaker] #%d game login for character %q", c.ID, login.CharacterName)
		c.SetFrameType(frame.XTEA(login.XTEAKey))
		return payload, nil

	default:
		return payload, nil
	}
}

func (h *GameHandshaker) OnDisconnect(c *proxy.Connection, reason proxy.DisconnectReason) {}
