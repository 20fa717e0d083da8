package wire

import "testing"

// buildPlaintextBlock returns a 128-byte RSA plaintext block shaped like the
// ones the legacy client sends: leading zero byte (the check RSADecrypt
// enforces), a handful of structured bytes, and filler. The leading zero
// byte is below the modulus's first byte (0x9B) in its 128-byte form, so
// the integer value is smaller than the modulus regardless of the filler.
func buildPlaintextBlock(filler byte) []byte {
	block := make([]byte, RSABlockSize)
	block[1] = 0x01
	for i := 2; i < len(block); i++ {
		block[i] = filler
	}
	return block
}

func TestRSARoundTrip(t *testing.T) {
	for _, filler := range []byte{0x00, 0x42, 0xAB, 0xFF} {
		plaintext := buildPlaintextBlock(filler)
		block := append([]byte(nil), plaintext...)

		if err := RSAEncrypt(block); err != nil {
			t.Fatalf("filler %#x: encrypt: %v", filler, err)
		}
		if err := RSADecrypt(block); err != nil {
			t.Fatalf("filler %#x: decrypt: %v", filler, err)
		}

		for i := range plaintext {
			if block[i] != plaintext[i] {
				t.Fatalf("filler %#x: byte %d: got %#x, want %#x", filler, i, block[i], plaintext[i])
			}
		}
	}
}

func TestRSADecryptRejectsWrongLength(t *testing.T) {
	if err := RSADecrypt(make([]byte, RSABlockSize-1)); err == nil {
		t.Fatalf("expected error for short block")
	}
	if err := RSADecrypt(make([]byte, RSABlockSize+1)); err == nil {
		t.Fatalf("expected error for long block")
	}
}

func TestRSAEncryptRejectsWrongLength(t *testing.T) {
	if err := RSAEncrypt(make([]byte, RSABlockSize-1)); err == nil {
		t.Fatalf("expected error for short block")
	}
}

func TestRSADecryptRejectsNonZeroLeadingByte(t *testing.T) {
	// A block whose decrypted leading byte is non-zero must be rejected.
	// Encrypt a plaintext with a non-zero leading byte, then attempt to
	// decrypt: RSADecrypt should reject it via ErrRSACheckFailed.
	plaintext := make([]byte, RSABlockSize)
	plaintext[0] = 0x01
	plaintext[1] = 0x01

	block := append([]byte(nil), plaintext...)
	if err := RSAEncrypt(block); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := RSADecrypt(block); err != ErrRSACheckFailed {
		t.Fatalf("got %v, want ErrRSACheckFailed", err)
	}
}
