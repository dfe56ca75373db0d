// Package pipeline composes the helix stages into Encrypt and Decrypt.
//
// Encryption: dnaRounds x (symbol encode -> protein permute -> decode), chaotic spatial
// scrambling, then keyed two-pass diffusion. Decryption runs the exact mirror.
// Every call is a pure function of its arguments and owns all of its buffers.
package pipeline

import (
	"fmt"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/chaos"
	"github.com/BackendStack21/helix-go/core"
	"github.com/BackendStack21/helix-go/diffusion"
	"github.com/BackendStack21/helix-go/dna"
	"github.com/BackendStack21/helix-go/protein"
	"github.com/BackendStack21/helix-go/utils"
)

// MaxDataSize is the largest buffer accepted by the validated entry points (256 MiB).
const MaxDataSize = 1 << 28

var _ helix.EncryptFunc = Encrypt

// Encrypt transforms data and returns a new slice of the same length.
// It performs no validation: parameters outside the chaotic regime silently produce a
// weak keystream. Use EncryptParams to validate first.
func Encrypt(data []byte, dnaRounds, proteinRounds int, r, x0 float64) []byte {
	n := len(data)
	buf := make([]byte, n)
	copy(buf, data)

	for d := 0; d < dnaRounds; d++ {
		groups := dna.EncodeBytes(buf)
		protein.Permute(groups, proteinRounds)
		utils.Zeroize(buf)
		buf = dna.DecodeGroups(groups)
	}

	// Spatial scrambling
	scrambled := chaos.Gather(buf, chaos.Permutation(n, r, x0))
	utils.Zeroize(buf)

	// Diffusion
	ks := chaos.ByteStream(n, r, x0)
	out := diffusion.Forward(scrambled, ks, core.KeyMix(dnaRounds, proteinRounds))
	utils.Zeroize(scrambled)
	utils.Zeroize(ks)
	return out
}

// Decrypt inverts Encrypt for the same parameters and returns a new slice.
func Decrypt(data []byte, dnaRounds, proteinRounds int, r, x0 float64) []byte {
	n := len(data)

	// Reverse diffusion
	ks := chaos.ByteStream(n, r, x0)
	undiffused := diffusion.Inverse(data, ks, core.KeyMix(dnaRounds, proteinRounds))
	utils.Zeroize(ks)

	// Reverse scrambling
	buf := chaos.Scatter(undiffused, chaos.Permutation(n, r, x0))
	utils.Zeroize(undiffused)

	for d := 0; d < dnaRounds; d++ {
		groups := dna.EncodeBytes(buf)
		protein.Inverse(groups, proteinRounds)
		utils.Zeroize(buf)
		buf = dna.DecodeGroups(groups)
	}
	return buf
}

// EncryptParams validates params and the input size, then encrypts.
func EncryptParams(data []byte, params helix.Params) ([]byte, error) {
	if err := check(data, params); err != nil {
		return nil, err
	}
	return Encrypt(data, params.DNARounds, params.ProteinRounds, params.R, params.X0), nil
}

// DecryptParams validates params and the input size, then decrypts.
func DecryptParams(data []byte, params helix.Params) ([]byte, error) {
	if err := check(data, params); err != nil {
		return nil, err
	}
	return Decrypt(data, params.DNARounds, params.ProteinRounds, params.R, params.X0), nil
}

// EncryptGrid encrypts the pixels of g and returns a grid of the same shape.
func EncryptGrid(g *helix.Grid, params helix.Params) (*helix.Grid, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	out, err := EncryptParams(g.Pix, params)
	if err != nil {
		return nil, err
	}
	return &helix.Grid{Width: g.Width, Height: g.Height, Pix: out}, nil
}

// DecryptGrid decrypts the pixels of g and returns a grid of the same shape.
func DecryptGrid(g *helix.Grid, params helix.Params) (*helix.Grid, error) {
	if err := checkGrid(g); err != nil {
		return nil, err
	}
	out, err := DecryptParams(g.Pix, params)
	if err != nil {
		return nil, err
	}
	return &helix.Grid{Width: g.Width, Height: g.Height, Pix: out}, nil
}

func check(data []byte, params helix.Params) error {
	if err := core.ValidateParams(params); err != nil {
		return err
	}
	if err := utils.CheckLength(len(data), MaxDataSize); err != nil {
		return fmt.Errorf("input of %d bytes: %w", len(data), err)
	}
	return nil
}

func checkGrid(g *helix.Grid) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", helix.ErrShapeMismatch)
	}
	size, err := utils.SafeMultiply(g.Width, g.Height)
	if err != nil {
		return fmt.Errorf("%w: %dx%d", helix.ErrShapeMismatch, g.Width, g.Height)
	}
	if len(g.Pix) != size {
		return fmt.Errorf("%w: %d pixels for %dx%d grid", helix.ErrLengthMismatch, len(g.Pix), g.Width, g.Height)
	}
	return nil
}
