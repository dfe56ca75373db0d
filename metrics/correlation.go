package metrics

import (
	"math"

	helix "github.com/BackendStack21/helix-go"
)

// Direction selects the neighbour used by Correlation.
type Direction byte

const (
	Horizontal Direction = 'H' // (x, y) vs (x+1, y)
	Vertical   Direction = 'V' // (x, y) vs (x, y+1)
	Diagonal   Direction = 'D' // (x, y) vs (x+1, y+1)
)

// neighbours returns the paired pixel arrays for direction d.
func neighbours(g *helix.Grid, d Direction) (xs, ys []float64) {
	dx, dy := 1, 0
	switch d {
	case Vertical:
		dx, dy = 0, 1
	case Diagonal:
		dx, dy = 1, 1
	}
	w, h := g.Width-dx, g.Height-dy
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	xs = make([]float64, 0, w*h)
	ys = make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			xs = append(xs, float64(g.At(x, y)))
			ys = append(ys, float64(g.At(x+dx, y+dy)))
		}
	}
	return xs, ys
}

// Correlation returns the Pearson correlation between each pixel and its neighbour in
// direction d. It returns 0 when either side has zero variance or there are no pairs.
func Correlation(g *helix.Grid, d Direction) float64 {
	xs, ys := neighbours(g, d)
	return pearson(xs, ys)
}

func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var num, sxx, syy float64
	for i := 0; i < n; i++ {
		a := xs[i] - mx
		b := ys[i] - my
		num += a * b
		sxx += a * a
		syy += b * b
	}
	den := math.Sqrt(sxx * syy)
	if den == 0 {
		return 0
	}
	return num / den
}
