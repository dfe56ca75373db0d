package metrics

import (
	"fmt"

	helix "github.com/BackendStack21/helix-go"
)

// NPCRUACI compares two equally shaped ciphertext images. NPCR is the percentage of
// differing pixels; UACI is the mean absolute difference divided by 255, as a percentage.
func NPCRUACI(a, b *helix.Grid) (npcr, uaci float64, err error) {
	if err := sameShape(a, b); err != nil {
		return 0, 0, err
	}
	n := len(a.Pix)
	if n == 0 {
		return 0, 0, nil
	}
	var changed, absDiff int64
	for i := range a.Pix {
		d := int64(a.Pix[i]) - int64(b.Pix[i])
		if d != 0 {
			changed++
		}
		if d < 0 {
			d = -d
		}
		absDiff += d
	}
	npcr = float64(changed) / float64(n) * 100
	uaci = float64(absDiff) / (float64(n) * 255) * 100
	return npcr, uaci, nil
}

// PerturbCenter returns a copy of g with the centre pixel (row h/2, column w/2) XORed by 128.
func PerturbCenter(g *helix.Grid) *helix.Grid {
	out := g.Clone()
	if len(out.Pix) > 0 {
		out.Pix[(g.Height/2)*g.Width+g.Width/2] ^= 128
	}
	return out
}

// Sensitivity encrypts g and its centre-perturbed copy and returns NPCR and UACI
// between the two ciphertexts.
func Sensitivity(g *helix.Grid, encrypt helix.EncryptFunc, dnaRounds, proteinRounds int, r, x0 float64) (npcr, uaci float64, err error) {
	if encrypt == nil {
		return 0, 0, fmt.Errorf("nil encrypt function")
	}
	enc, err := encryptAs(g, g.Pix, encrypt, dnaRounds, proteinRounds, r, x0)
	if err != nil {
		return 0, 0, err
	}
	mod, err := encryptAs(g, PerturbCenter(g).Pix, encrypt, dnaRounds, proteinRounds, r, x0)
	if err != nil {
		return 0, 0, err
	}
	return NPCRUACI(enc, mod)
}

// encryptAs encrypts pix and reshapes the result to the shape of g.
func encryptAs(g *helix.Grid, pix []byte, encrypt helix.EncryptFunc, dnaRounds, proteinRounds int, r, x0 float64) (*helix.Grid, error) {
	out := encrypt(pix, dnaRounds, proteinRounds, r, x0)
	if len(out) != len(pix) {
		return nil, fmt.Errorf("%w: encrypt returned %d bytes for %d", helix.ErrLengthMismatch, len(out), len(pix))
	}
	return &helix.Grid{Width: g.Width, Height: g.Height, Pix: out}, nil
}

func sameShape(a, b *helix.Grid) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil image", helix.ErrShapeMismatch)
	}
	if !a.SameShape(b) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", helix.ErrShapeMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if len(a.Pix) != len(b.Pix) || len(a.Pix) != a.Width*a.Height {
		return fmt.Errorf("%w: pixel buffers do not match %dx%d", helix.ErrLengthMismatch, a.Width, a.Height)
	}
	return nil
}
