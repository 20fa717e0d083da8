package handshake

import (
	"log"

	"tibiaproxy/internal/frame"
	"tibiaproxy/internal/packet"
	"tibiaproxy/internal/proxy"
)

type loginState struct {
	aborted bool
}

// LoginHandshaker implements the login-connection role of the handshake
// state machine: AwaitingClientLogin with FrameType Raw, switching to
// Streaming(key) on the client's AccountLogin frame.
type LoginHandshaker struct{}

func (h *LoginHandshaker) OnNewConnection(c *proxy.Connection) error {
	c.State = &loginState{}
	c.SetFrameType(frame.Raw())
	return nil
}

func (h *LoginHandshaker) OnReady(c *proxy.Connection) error {
	return nil
}

func (h *LoginHandshaker) OnFrame(c *proxy.Connection, origin proxy.Origin, payload []byte) ([]byte, error) {
	st := c.State.(*loginState)
	if st.aborted {
		return payload, nil
	}

	switch c.FrameCounter {
	case 0:
		if origin == proxy.OriginServer {
			st.aborted = true
			return nil, ErrUnexpectedOrigin
		}
		if len(payload) == 0 || payload[0] != packet.ClientAccountLogin {
			st.aborted = true
			return nil, ErrWrongFirstPacket
		}
		login, err := packet.ParseAccountLogin(payload[1:])
		if err != nil {
			st.aborted = true
			return nil, err
		}
		log.Printf("[LoginHandshaker] #%d account login from %q", c.ID, login.AccountName)
		c.SetFrameType(frame.XTEA(login.XTEAKey))
		return payload, nil

	case 1:
		if origin == proxy.OriginClient {
			st.aborted = true
			return nil, ErrUnexpectedOrigin
		}
		return payload, nil

	default:
		if origin == proxy.OriginClient {
			st.aborted = true
			return nil, ErrUnexpectedOrigin
		}
		return payload, nil
	}
}

func (h *LoginHandshaker) OnDisconnect(c *proxy.Connection, reason proxy.DisconnectReason) {}
