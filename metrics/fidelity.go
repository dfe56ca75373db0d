package metrics

import (
	"fmt"
	"math"

	helix "github.com/BackendStack21/helix-go"
)

// SSIM constants (scikit-image defaults for 8-bit data).
const (
	SSIMWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
	dataRange  = 255.0
)

// MSE returns the mean squared error between two equally shaped images.
func MSE(a, b *helix.Grid) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	if len(a.Pix) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a.Pix {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		sum += d * d
	}
	return sum / float64(len(a.Pix)), nil
}

// PSNR returns the peak signal-to-noise ratio in dB with a data range of 255.
// Identical images yield +Inf.
func PSNR(a, b *helix.Grid) (float64, error) {
	mse, err := MSE(a, b)
	if err != nil {
		return 0, err
	}
	return psnrFromMSE(mse), nil
}

func psnrFromMSE(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(dataRange*dataRange/mse)
}

// SSIM returns the mean structural similarity index over every 7x7 window that lies fully
// inside the image, using sample covariance. Both sides must be at least 7x7.
func SSIM(a, b *helix.Grid) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	if a.Width < SSIMWindow || a.Height < SSIMWindow {
		return 0, fmt.Errorf("%w: SSIM needs at least %dx%d, got %dx%d",
			helix.ErrImageTooSmall, SSIMWindow, SSIMWindow, a.Width, a.Height)
	}

	ia := newIntegral(a, a)
	ib := newIntegral(b, b)
	iab := newIntegral(a, b)

	const np = SSIMWindow * SSIMWindow
	const covNorm = float64(np) / float64(np-1)
	c1 := (ssimK1 * dataRange) * (ssimK1 * dataRange)
	c2 := (ssimK2 * dataRange) * (ssimK2 * dataRange)

	var total float64
	count := 0
	for y := 0; y+SSIMWindow <= a.Height; y++ {
		for x := 0; x+SSIMWindow <= a.Width; x++ {
			sx, sxx := ia.window(x, y)
			sy, syy := ib.window(x, y)
			_, sxy := iab.window(x, y)

			ux := float64(sx) / np
			uy := float64(sy) / np
			vx := covNorm * (float64(sxx)/np - ux*ux)
			vy := covNorm * (float64(syy)/np - uy*uy)
			vxy := covNorm * (float64(sxy)/np - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			total += num / den
			count++
		}
	}
	return total / float64(count), nil
}

// integral holds summed-area tables of p and p*q over a grid.
type integral struct {
	sum    []int64 // prefix sums of p
	sumPQ  []int64 // prefix sums of p*q
	stride int
}

func newIntegral(p, q *helix.Grid) *integral {
	stride := p.Width + 1
	it := &integral{
		sum:    make([]int64, stride*(p.Height+1)),
		sumPQ:  make([]int64, stride*(p.Height+1)),
		stride: stride,
	}
	for y := 0; y < p.Height; y++ {
		var row, rowPQ int64
		for x := 0; x < p.Width; x++ {
			pv := int64(p.Pix[y*p.Width+x])
			qv := int64(q.Pix[y*q.Width+x])
			row += pv
			rowPQ += pv * qv
			it.sum[(y+1)*stride+x+1] = it.sum[y*stride+x+1] + row
			it.sumPQ[(y+1)*stride+x+1] = it.sumPQ[y*stride+x+1] + rowPQ
		}
	}
	return it
}

// window returns the sums over the SSIMWindow x SSIMWindow block with top-left (x, y).
func (it *integral) window(x, y int) (s, spq int64) {
	x1, y1 := x+SSIMWindow, y+SSIMWindow
	at := func(t []int64) int64 {
		return t[y1*it.stride+x1] - t[y*it.stride+x1] - t[y1*it.stride+x] + t[y*it.stride+x]
	}
	return at(it.sum), at(it.sumPQ)
}
