package helix

import (
	"encoding/json"
	"fmt"
	"math"
)

// Profile names a preset parameter set.
type Profile string

const (
	// ProfileStandard is the original single DNA round, two protein round configuration.
	ProfileStandard Profile = "standard"
	// ProfileExtended runs more rounds and a chaos parameter closer to 4.
	ProfileExtended Profile = "extended"
)

// =============================================================================
// Parameter Types
// =============================================================================

// Params is the full configuration of one encrypt/decrypt call.
type Params struct {
	DNARounds     int     `json:"dna_rounds"`     // Encode/permute/decode repetitions
	ProteinRounds int     `json:"protein_rounds"` // Rotation rounds inside each DNA round
	R             float64 `json:"r"`              // Logistic map control parameter
	X0            float64 `json:"x0"`             // Logistic map initial condition
}

// String returns a compact representation of the parameters.
func (p Params) String() string {
	return fmt.Sprintf("dna=%d protein=%d r=%g x0=%g", p.DNARounds, p.ProteinRounds, p.R, p.X0)
}

// =============================================================================
// Symbol Types
// =============================================================================

// SymbolGroup holds the four 2-bit symbols of one byte, most significant first.
// Each element is in [0, 3].
type SymbolGroup [4]uint8

// Sum returns the sum of the group's symbols.
func (g SymbolGroup) Sum() int {
	return int(g[0]) + int(g[1]) + int(g[2]) + int(g[3])
}

// =============================================================================
// Image Types
// =============================================================================

// Grid is a row-major 8-bit grayscale image.
type Grid struct {
	Width  int
	Height int
	Pix    []uint8 // len(Pix) == Width*Height
}

// NewGrid wraps pix as a width x height grid.
// The slice is not copied.
func NewGrid(width, height int, pix []uint8) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrShapeMismatch, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d grid", ErrLengthMismatch, len(pix), width, height)
	}
	return &Grid{Width: width, Height: height, Pix: pix}, nil
}

// GridFromRows copies a slice of equal-length rows into a Grid.
func GridFromRows(rows [][]uint8) (*Grid, error) {
	if len(rows) == 0 {
		return &Grid{}, nil
	}
	w := len(rows[0])
	pix := make([]uint8, 0, w*len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, y, len(row), w)
		}
		pix = append(pix, row...)
	}
	return &Grid{Width: w, Height: len(rows), Pix: pix}, nil
}

// At returns the pixel at column x, row y.
func (g *Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// SameShape reports whether g and o have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{Width: g.Width, Height: g.Height, Pix: pix}
}

// =============================================================================
// Evaluation Types
// =============================================================================

// EncryptFunc is the encrypt capability handed to the evaluator so it can re-encrypt a
// perturbed plaintext. pipeline.Encrypt satisfies it.
type EncryptFunc func(data []byte, dnaRounds, proteinRounds int, r, x0 float64) []byte

// Report maps metric names to values.
type Report map[string]float64

// MarshalJSON encodes non-finite values, which JSON numbers cannot carry, as the strings
// "inf", "-inf" and "nan".
func (r Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		switch {
		case math.IsInf(v, 1):
			out[k] = "inf"
		case math.IsInf(v, -1):
			out[k] = "-inf"
		case math.IsNaN(v):
			out[k] = "nan"
		default:
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Metric names reported by metrics.Evaluate.
const (
	MetricMSEEnc      = "MSE_enc"
	MetricPSNREnc     = "PSNR_enc"
	MetricSSIMEnc     = "SSIM_enc"
	MetricEntropyOrig = "Entropy_Orig"
	MetricEntropyEnc  = "Entropy_Enc"
	MetricCorrHOrig   = "Corr_H_Orig"
	MetricCorrVOrig   = "Corr_V_Orig"
	MetricCorrDOrig   = "Corr_D_Orig"
	MetricCorrHEnc    = "Corr_H_Enc"
	MetricCorrVEnc    = "Corr_V_Enc"
	MetricCorrDEnc    = "Corr_D_Enc"
	MetricMSEDec      = "MSE_dec_check"
	MetricPSNRDec     = "PSNR_dec"
	MetricSSIMDec     = "SSIM_dec"
	MetricNPCR        = "NPCR_pct"
	MetricUACI        = "UACI_pct"
)
