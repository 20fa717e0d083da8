package wire

import (
	"errors"
	"math/big"
)

// RSABlockSize is the fixed size of every RSA-sealed block in the login
// handshake packets.
const RSABlockSize = 128

// ErrRSACheckFailed is returned when a decrypted RSA block's leading byte
// is non-zero, which should never happen for a genuine client.
var ErrRSACheckFailed = errors.New("wire: rsa decrypted block failed leading-zero check")

// Fixed 1024-bit RSA modulus and private exponent. This is not a
// security-grade keypair: it is baked into every copy of the legacy client
// and exists only to obscure the session key exchange on the wire, not to
// guarantee confidentiality against an adversary who can read the client
// binary. Reused process-wide; never extend this into a real PKI.
const (
	rsaModulusHex = "009B646903B45B07AC956568D87353BD7165139DD7940703B03E6DD079399661B4A837AA60561D7CCB9452FA0080594909882AB5BCA58A1A1B35F8B1059B72B1212611C6152AD3DBB3CFBEE7ADC142A75D3D75971509C321C5C24A5BD51FD460F01B4E15BEB0DE1930528A5D3F15C1E3CBF5C401D6777E10ACAAB33DBE8D5B7FF5"
	rsaPrivExpHex = "428BD3B5346DAF71A761106F71A43102F8C857D6549C54660BB6378B52B0261399DE8CE648BAC410E2EA4E0A1CED1FAC2756331220CA6DB7AD7B5D440B7828865856E7AA6D8F45837FEEE9B4A3A0AA21322A1E2AB75B1825E786CF81A28A8A09A1E28519DB64FF9BAF311E850C2BFA1FB7B08A056CC337F7DF443761AEFE8D81"
	rsaPubExp     = 65537
)

var (
	rsaN *big.Int
	rsaD *big.Int
	rsaE *big.Int
)

func init() {
	var ok bool
	rsaN, ok = new(big.Int).SetString(rsaModulusHex, 16)
	if !ok {
		panic("wire: malformed rsa modulus constant")
	}
	rsaD, ok = new(big.Int).SetString(rsaPrivExpHex, 16)
	if !ok {
		panic("wire: malformed rsa exponent constant")
	}
	rsaE = big.NewInt(rsaPubExp)
}

// RSADecrypt performs textbook RSA decryption (m = c^d mod n) on a 128-byte
// big-endian block, left-pads the result back to 128 bytes, and checks that
// the leading byte is zero as the legacy client's padding convention
// requires. data must be exactly RSABlockSize bytes; it is decrypted in
// place.
func RSADecrypt(data []byte) error {
	if len(data) != RSABlockSize {
		return errors.New("wire: rsa input must be exactly 128 bytes")
	}

	c := new(big.Int).SetBytes(data)
	m := c.Exp(c, rsaD, rsaN)

	mBytes := m.Bytes()
	if len(mBytes) > RSABlockSize {
		return ErrRSACheckFailed
	}

	pad := RSABlockSize - len(mBytes)
	for i := 0; i < pad; i++ {
		data[i] = 0
	}
	copy(data[pad:], mBytes)

	if data[0] != 0 {
		return ErrRSACheckFailed
	}
	return nil
}

// RSAEncrypt performs textbook RSA encryption (c = m^e mod n) using the
// conventional public exponent 65537. It exists so the codec package is
// round-trip testable without an external encryptor; the proxy's own
// decode path never calls it, since acting as a client is out of scope for
// the core.
func RSAEncrypt(data []byte) error {
	if len(data) != RSABlockSize {
		return errors.New("wire: rsa input must be exactly 128 bytes")
	}

	m := new(big.Int).SetBytes(data)
	c := m.Exp(m, rsaE, rsaN)

	cBytes := c.Bytes()
	if len(cBytes) > RSABlockSize {
		return errors.New("wire: rsa ciphertext overflowed block size")
	}

	pad := RSABlockSize - len(cBytes)
	for i := 0; i < pad; i++ {
		data[i] = 0
	}
	copy(data[pad:], cBytes)
	return nil
}
