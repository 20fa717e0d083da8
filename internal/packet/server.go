package packet

import "tibiaproxy/internal/wire"

// NoncePayload is the server's opening game-connection greeting. The proxy
// treats it as opaque (only its LengthPrefixed framing matters), but a
// full read implementation is kept for testability and for any
// operational collaborator that wants to inspect it.
type NoncePayload struct {
	Timestamp    uint32
	RandomNumber uint8
}

// ParseNonce reads a Nonce packet body.
func ParseNonce(body []byte) (*NoncePayload, error) {
	r := wire.NewReader(body)
	p := &NoncePayload{}
	var err error
	if p.Timestamp, err = r.U32(); err != nil {
		return nil, err
	}
	if p.RandomNumber, err = r.U8(); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteNonce serializes a Nonce packet body.
func WriteNonce(p NoncePayload) []byte {
	w := wire.NewWriter()
	w.U32(p.Timestamp)
	w.U8(p.RandomNumber)
	return w.Bytes()
}

// World describes one game-world entry in a CharacterList packet. The
// proxy rewrites IP/Port on every world before forwarding the packet to
// the client.
type World struct {
	ID   uint8
	Name string
	IP   string
	Port uint16
}

// Character is one playable character entry in a CharacterList packet.
type Character struct {
	WorldID uint8
	Name    string
}

// CharacterListPayload is the server's post-login world/character catalog.
type CharacterListPayload struct {
	Worlds          []World
	Characters      []Character
	HasPremium      bool
	PremiumDaysLeft uint32
}

// ParseCharacterList reads a CharacterList packet body (the frame payload
// with the leading LoginServerCharList ID byte already stripped).
func ParseCharacterList(body []byte) (*CharacterListPayload, error) {
	r := wire.NewReader(body)
	p := &CharacterListPayload{}

	worldCount, err := r.U8()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(worldCount); i++ {
		var w World
		if w.ID, err = r.U8(); err != nil {
			return nil, err
		}
		if w.Name, err = r.String(); err != nil {
			return nil, err
		}
		if w.IP, err = r.String(); err != nil {
			return nil, err
		}
		if w.Port, err = r.U16(); err != nil {
			return nil, err
		}
		if _, err = r.U8(); err != nil { // trailing zero byte
			return nil, err
		}
		p.Worlds = append(p.Worlds, w)
	}

	charCount, err := r.U8()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(charCount); i++ {
		var c Character
		if c.WorldID, err = r.U8(); err != nil {
			return nil, err
		}
		if c.Name, err = r.String(); err != nil {
			return nil, err
		}
		p.Characters = append(p.Characters, c)
	}

	if _, err = r.U8(); err != nil { // trailing zero byte
		return nil, err
	}

	premium, err := r.U8()
	if err != nil {
		return nil, err
	}
	p.HasPremium = premium != 0

	if p.PremiumDaysLeft, err = r.U32(); err != nil {
		return nil, err
	}

	return p, nil
}

// WriteCharacterList serializes a CharacterList packet body, mirroring
// ParseCharacterList field for field.
func WriteCharacterList(p *CharacterListPayload) []byte {
	w := wire.NewWriter()

	w.U8(uint8(len(p.Worlds)))
	for _, world := range p.Worlds {
		w.U8(world.ID)
		w.String(world.Name)
		w.String(world.IP)
		w.U16(world.Port)
		w.U8(0)
	}

	w.U8(uint8(len(p.Characters)))
	for _, c := range p.Characters {
		w.U8(c.WorldID)
		w.String(c.Name)
	}

	w.U8(0)
	if p.HasPremium {
		w.U8(1)
	} else {
		w.U8(0)
	}
	w.U32(p.PremiumDaysLeft)

	return w.Bytes()
}
