package pipeline

import (
	"bytes"
	"testing"
)

// FuzzRoundTrip checks Decrypt(Encrypt(data)) == data for arbitrary input and rounds
func FuzzRoundTrip(f *testing.F) {
	// Add seed corpus
	f.Add([]byte{}, uint8(1), uint8(2))
	f.Add([]byte{0}, uint8(1), uint8(1))
	f.Add(make([]byte, 64), uint8(3), uint8(4))
	f.Add([]byte("helix"), uint8(2), uint8(5))

	f.Fuzz(func(t *testing.T, data []byte, dr, pr uint8) {
		dnaRounds := int(dr%4) + 1
		proteinRounds := int(pr%8) + 1
		enc := Encrypt(data, dnaRounds, proteinRounds, 3.99, 0.7)
		if len(enc) != len(data) {
			t.Fatalf("length changed: %d -> %d", len(data), len(enc))
		}
		if dec := Decrypt(enc, dnaRounds, proteinRounds, 3.99, 0.7); !bytes.Equal(dec, data) {
			t.Fatalf("round trip mismatch for %x", data)
		}
	})
}
