package wire

import "testing"

func TestStringRoundTrip(t *testing.T) {
	s := "Hello World!"
	w := NewWriter()
	w.String(s)

	r := NewReader(w.Bytes())
	got, err := r.String()
	if err != nil {
		t.Fatalf("failed to get string: %v", err)
	}
	if got != s {
		t.Fatalf("got %q, want %q", got, s)
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	w := NewWriter()
	w.U16(2)
	w.Raw([]byte{0xff, 0xfe})

	r := NewReader(w.Bytes())
	if _, err := r.String(); err != ErrInvalidString {
		t.Fatalf("got err %v, want ErrInvalidString", err)
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, value := range []float64{857.36, 261.29, -4795.01} {
		w := NewWriter()
		w.Double(value, 3)

		r := NewReader(w.Bytes())
		got, err := r.Double()
		if err != nil {
			t.Fatalf("Double() error: %v", err)
		}
		if got != value {
			t.Fatalf("round trip %v: got %v", value, got)
		}
	}
}

func TestDoubleExactBytes(t *testing.T) {
	w := NewWriter()
	w.Double(-4795.01, 3)

	b := w.Bytes()
	if len(b) != 5 {
		t.Fatalf("expected 5 bytes, got %d", len(b))
	}
	if b[0] != 0x03 {
		t.Fatalf("precision byte: got 0x%02X, want 0x03", b[0])
	}

	r := NewReader(b[1:])
	raw, err := r.U32()
	if err != nil {
		t.Fatalf("U32() error: %v", err)
	}
	if raw != 2_142_688_637 {
		t.Fatalf("got %d, want 2142688637", raw)
	}
}
