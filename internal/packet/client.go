package packet

import (
	"tibiaproxy/internal/wire"
)

// AccountLoginPayload is the client's login-connection handshake packet.
// It carries two independently RSA-sealed 128-byte blocks: the first
// holds the session's XTEA key and the account credentials, the second
// (at the very end of the frame) holds the auth token.
type AccountLoginPayload struct {
	ClientOS         uint16
	ClientVersion    uint16
	ProtocolVersion  uint32
	ContentRevision  uint32
	SprSignature     uint32
	PicSignature     uint32
	GamePreviewState uint8
	XTEAKey          wire.XTEAKey
	AccountName      string
	Password         string
	AuthToken        string
}

// ParseAccountLogin reads an AccountLogin packet body (the frame payload
// with the leading ClientAccountLogin ID byte already stripped).
func ParseAccountLogin(body []byte) (*AccountLoginPayload, error) {
	r := wire.NewReader(body)

	p := &AccountLoginPayload{}
	var err error
	if p.ClientOS, err = r.U16(); err != nil {
		return nil, err
	}
	if p.ClientVersion, err = r.U16(); err != nil {
		return nil, err
	}
	if p.ProtocolVersion, err = r.U32(); err != nil {
		return nil, err
	}
	if p.ContentRevision, err = r.U32(); err != nil {
		return nil, err
	}
	if p.SprSignature, err = r.U32(); err != nil {
		return nil, err
	}
	if p.PicSignature, err = r.U32(); err != nil {
		return nil, err
	}
	if p.GamePreviewState, err = r.U8(); err != nil {
		return nil, err
	}

	credBlock, err := r.Bytes(wire.RSABlockSize)
	if err != nil {
		return nil, err
	}
	credBlock = append([]byte(nil), credBlock...)
	if err := wire.RSADecrypt(credBlock); err != nil {
		return nil, err
	}

	cr := wire.NewReader(credBlock)
	if _, err := cr.U8(); err != nil { // leading zero byte
		return nil, err
	}
	for i := 0; i < 4; i++ {
		word, err := cr.U32()
		if err != nil {
			return nil, err
		}
		p.XTEAKey[i] = word
	}
	if p.AccountName, err = cr.String(); err != nil {
		return nil, err
	}
	if p.Password, err = cr.String(); err != nil {
		return nil, err
	}

	tokenBlock, err := r.Bytes(wire.RSABlockSize)
	if err != nil {
		return nil, err
	}
	tokenBlock = append([]byte(nil), tokenBlock...)
	if err := wire.RSADecrypt(tokenBlock); err != nil {
		return nil, err
	}
	tr := wire.NewReader(tokenBlock)
	if _, err := tr.U8(); err != nil { // leading zero byte
		return nil, err
	}
	if p.AuthToken, err = tr.String(); err != nil {
		return nil, err
	}

	return p, nil
}

// GameLoginPayload is the client's game-connection handshake packet,
// sent immediately after the server's Nonce. It carries a single
// RSA-sealed 128-byte block with the session's XTEA key, character
// selection, and the nonce challenge echoed back.
type GameLoginPayload struct {
	ClientOS           uint16
	ClientVersion      uint16
	ProtocolVersion    uint32
	ClientType         uint8
	DatRevision        uint16
	XTEAKey            wire.XTEAKey
	GMFlag             uint8
	SessionKey         string
	CharacterName      string
	ChallengeTimestamp uint32
	ChallengeRandNum   uint8
}

// ParseGameLogin reads a GameLogin packet body (the frame payload with the
// leading ClientGameLogin ID byte already stripped).
func ParseGameLogin(body []byte) (*GameLoginPayload, error) {
	r := wire.NewReader(body)

	p := &GameLoginPayload{}
	var err error
	if p.ClientOS, err = r.U16(); err != nil {
		return nil, err
	}
	if p.ClientVersion, err = r.U16(); err != nil {
		return nil, err
	}
	if p.ProtocolVersion, err = r.U32(); err != nil {
		return nil, err
	}
	if p.ClientType, err = r.U8(); err != nil {
		return nil, err
	}
	if p.DatRevision, err = r.U16(); err != nil {
		return nil, err
	}

	block, err := r.Bytes(wire.RSABlockSize)
	if err != nil {
		return nil, err
	}
	block = append([]byte(nil), block...)
	if err := wire.RSADecrypt(block); err != nil {
		return nil, err
	}

	br := wire.NewReader(block)
	if _, err := br.U8(); err != nil { // leading zero byte
		return nil, err
	}
	for i := 0; i < 4; i++ {
		word, err := br.U32()
		if err != nil {
			return nil, err
		}
		p.XTEAKey[i] = word
	}
	if p.GMFlag, err = br.U8(); err != nil {
		return nil, err
	}
	if p.SessionKey, err = br.String(); err != nil {
		return nil, err
	}
	if p.CharacterName, err = br.String(); err != nil {
		return nil, err
	}
	if p.ChallengeTimestamp, err = br.U32(); err != nil {
		return nil, err
	}
	if p.ChallengeRandNum, err = br.U8(); err != nil {
		return nil, err
	}

	return p, nil
}
