package envelope

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/core"
)

func randomCiphertext(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(b)
	return b
}

func TestSealOpenRoundTrip(t *testing.T) {
	ct := randomCiphertext(32 * 20)
	data, err := Seal(ct, 32, 20, core.StandardParams)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if len(data) != HeaderSize+len(ct)+ChecksumSize {
		t.Errorf("random payload should be stored raw, envelope size %d", len(data))
	}

	sealed, err := Open(data, core.StandardParams)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(sealed.Ciphertext, ct) {
		t.Error("opened ciphertext differs")
	}
	h := sealed.Header
	if h.Width != 32 || h.Height != 20 || h.DNARounds != 1 || h.ProteinRounds != 2 || h.Compressed() {
		t.Errorf("unexpected header: %+v", h)
	}
}

func TestSealCompressesRedundantPayload(t *testing.T) {
	ct := make([]byte, 64*64)
	data, err := Seal(ct, 64, 64, core.ExtendedParams)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	h, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !h.Compressed() {
		t.Error("zero payload was not compressed")
	}
	if h.PayloadLen >= len(ct) {
		t.Errorf("compressed payload %d bytes, raw %d", h.PayloadLen, len(ct))
	}

	sealed, err := Open(data, core.ExtendedParams)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(sealed.Ciphertext, ct) {
		t.Error("decompressed ciphertext differs")
	}
}

func TestSealEmpty(t *testing.T) {
	data, err := Seal(nil, 0, 0, core.StandardParams)
	if err != nil {
		t.Fatalf("Seal empty failed: %v", err)
	}
	sealed, err := Open(data, core.StandardParams)
	if err != nil {
		t.Fatalf("Open empty failed: %v", err)
	}
	if len(sealed.Ciphertext) != 0 {
		t.Errorf("empty envelope returned %d bytes", len(sealed.Ciphertext))
	}
}

func TestSealRejectsBadInput(t *testing.T) {
	if _, err := Seal(make([]byte, 10), 3, 3, core.StandardParams); !errors.Is(err, helix.ErrLengthMismatch) {
		t.Errorf("length mismatch: got %v", err)
	}
	if _, err := Seal(nil, -1, 0, core.StandardParams); !errors.Is(err, helix.ErrShapeMismatch) {
		t.Errorf("negative width: got %v", err)
	}
	bad := core.StandardParams
	bad.DNARounds = 0
	if _, err := Seal(make([]byte, 4), 2, 2, bad); !errors.Is(err, helix.ErrInvalidRounds) {
		t.Errorf("zero rounds: got %v", err)
	}
}

func TestOpenKeyMismatch(t *testing.T) {
	data, _ := Seal(randomCiphertext(16), 4, 4, core.StandardParams)

	otherX0 := core.StandardParams
	otherX0.X0 = 0.7000001
	if _, err := Open(data, otherX0); !errors.Is(err, helix.ErrKeyMismatch) {
		t.Errorf("different x0: got %v, want ErrKeyMismatch", err)
	}
	otherRounds := core.StandardParams
	otherRounds.ProteinRounds = 3
	if _, err := Open(data, otherRounds); !errors.Is(err, helix.ErrKeyMismatch) {
		t.Errorf("different rounds: got %v, want ErrKeyMismatch", err)
	}
}

func TestOpenLengthMismatch(t *testing.T) {
	p := core.StandardParams
	// Header claims 4x4 but carries 15 bytes.
	h := Header{Version: Version, Width: 4, Height: 4, DNARounds: p.DNARounds,
		ProteinRounds: p.ProteinRounds, Fingerprint: Fingerprint(p)}
	data := marshal(&h, randomCiphertext(15))

	if _, err := Inspect(data); err != nil {
		t.Fatalf("Inspect should accept a well-formed envelope: %v", err)
	}
	if _, err := Open(data, p); !errors.Is(err, helix.ErrLengthMismatch) {
		t.Errorf("got %v, want ErrLengthMismatch", err)
	}

	// Compressed frame that expands beyond the header's size.
	big, _ := encodeZstd(make([]byte, 100))
	h.Flags = FlagCompressed
	data = marshal(&h, big)
	if _, err := Open(data, p); !errors.Is(err, helix.ErrLengthMismatch) {
		t.Errorf("oversized frame: got %v, want ErrLengthMismatch", err)
	}
}

func TestOpenCorruption(t *testing.T) {
	data, _ := Seal(randomCiphertext(64), 8, 8, core.StandardParams)

	cases := map[string][]byte{
		"truncated":   data[:len(data)-1],
		"too_short":   data[:10],
		"extra_bytes": append(append([]byte(nil), data...), 0),
	}
	flipped := append([]byte(nil), data...)
	flipped[HeaderSize+3] ^= 1
	cases["payload_flip"] = flipped

	magic := append([]byte(nil), data...)
	magic[0] = 'X'
	cases["bad_magic"] = magic

	version := append([]byte(nil), data...)
	version[4] = 9
	cases["bad_version"] = version

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Open(c, core.StandardParams); !errors.Is(err, helix.ErrInvalidEnvelope) {
				t.Errorf("got %v, want ErrInvalidEnvelope", err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(core.StandardParams)
	if len(a) != FingerprintSize {
		t.Fatalf("fingerprint length %d", len(a))
	}
	if !bytes.Equal(a, Fingerprint(core.StandardParams)) {
		t.Error("fingerprint not deterministic")
	}
	if bytes.Equal(a, Fingerprint(core.ExtendedParams)) {
		t.Error("different params share a fingerprint")
	}
}
