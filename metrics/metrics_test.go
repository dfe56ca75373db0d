package metrics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	helix "github.com/BackendStack21/helix-go"
)

func gradient(w, h int) *helix.Grid {
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = byte(x + y)
		}
	}
	return &helix.Grid{Width: w, Height: h, Pix: pix}
}

func constant(w, h int, v byte) *helix.Grid {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = v
	}
	return &helix.Grid{Width: w, Height: h, Pix: pix}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEntropy(t *testing.T) {
	if got := Entropy(make([]byte, 65536)); got != 0 {
		t.Errorf("Entropy(zeros) = %v, want exactly 0", got)
	}
	if got := Entropy(nil); got != 0 {
		t.Errorf("Entropy(nil) = %v, want 0", got)
	}

	uniform := make([]byte, 256*16)
	for i := range uniform {
		uniform[i] = byte(i)
	}
	if got := Entropy(uniform); got != 8 {
		t.Errorf("Entropy(exactly uniform) = %v, want 8", got)
	}

	random := make([]byte, 65536)
	rand.New(rand.NewSource(1)).Read(random)
	if got := Entropy(random); !approx(got, 8, 0.01) {
		t.Errorf("Entropy(random) = %v, want within 0.01 of 8", got)
	}

	if got := Entropy([]byte{0, 255}); got != 1 {
		t.Errorf("Entropy two symbols = %v, want 1", got)
	}
}

func TestHistogram(t *testing.T) {
	h := Histogram([]byte{1, 1, 2, 255})
	if h[1] != 2 || h[2] != 1 || h[255] != 1 || h[0] != 0 {
		t.Errorf("unexpected histogram counts: %d %d %d %d", h[0], h[1], h[2], h[255])
	}
}

func TestCorrelation(t *testing.T) {
	// x+y below 256 on a 64x64 grid: every neighbour is value+1 or value+2.
	g := gradient(64, 64)
	for _, d := range []Direction{Horizontal, Vertical, Diagonal} {
		if got := Correlation(g, d); !approx(got, 1, 1e-9) {
			t.Errorf("gradient Correlation(%c) = %v, want 1", d, got)
		}
	}

	flat := constant(16, 16, 77)
	for _, d := range []Direction{Horizontal, Vertical, Diagonal} {
		if got := Correlation(flat, d); got != 0 {
			t.Errorf("flat Correlation(%c) = %v, want 0", d, got)
		}
	}

	checker := constant(16, 16, 0)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if (x+y)%2 == 1 {
				checker.Pix[y*16+x] = 255
			}
		}
	}
	if got := Correlation(checker, Horizontal); !approx(got, -1, 1e-9) {
		t.Errorf("checker Correlation(H) = %v, want -1", got)
	}
	if got := Correlation(checker, Vertical); !approx(got, -1, 1e-9) {
		t.Errorf("checker Correlation(V) = %v, want -1", got)
	}
	// diagonal neighbours are equal
	if got := Correlation(checker, Diagonal); !approx(got, 1, 1e-9) {
		t.Errorf("checker Correlation(D) = %v, want 1", got)
	}

	// A single column has no horizontal pairs.
	column := gradient(1, 10)
	if got := Correlation(column, Horizontal); got != 0 {
		t.Errorf("single column Correlation(H) = %v, want 0", got)
	}
}

func TestNPCRUACI(t *testing.T) {
	a := constant(8, 8, 0)
	npcr, uaci, err := NPCRUACI(a, a.Clone())
	if err != nil {
		t.Fatalf("NPCRUACI failed: %v", err)
	}
	if npcr != 0 || uaci != 0 {
		t.Errorf("identical images: NPCR=%v UACI=%v, want 0, 0", npcr, uaci)
	}

	b := constant(8, 8, 255)
	npcr, uaci, _ = NPCRUACI(a, b)
	if npcr != 100 || uaci != 100 {
		t.Errorf("opposite images: NPCR=%v UACI=%v, want 100, 100", npcr, uaci)
	}

	c := a.Clone()
	c.Pix[0] = 51
	npcr, uaci, _ = NPCRUACI(a, c)
	if !approx(npcr, 100.0/64, 1e-12) || !approx(uaci, 100.0/64*51/255, 1e-12) {
		t.Errorf("one pixel: NPCR=%v UACI=%v", npcr, uaci)
	}

	if _, _, err := NPCRUACI(a, constant(8, 7, 0)); !errors.Is(err, helix.ErrShapeMismatch) {
		t.Errorf("shape mismatch: got %v, want ErrShapeMismatch", err)
	}
	if _, _, err := NPCRUACI(a, constant(4, 16, 0)); !errors.Is(err, helix.ErrShapeMismatch) {
		t.Errorf("transposed shape: got %v, want ErrShapeMismatch", err)
	}
}

func TestPerturbCenter(t *testing.T) {
	g := constant(5, 4, 10)
	p := PerturbCenter(g)
	if p.Pix[2*5+2] != 10^128 {
		t.Errorf("centre pixel = %d, want %d", p.Pix[2*5+2], 10^128)
	}
	if g.Pix[2*5+2] != 10 {
		t.Error("PerturbCenter modified its input")
	}
	diff := 0
	for i := range g.Pix {
		if g.Pix[i] != p.Pix[i] {
			diff++
		}
	}
	if diff != 1 {
		t.Errorf("%d pixels changed, want 1", diff)
	}
}

func TestMSEAndPSNR(t *testing.T) {
	a := constant(10, 10, 0)
	mse, err := MSE(a, a.Clone())
	if err != nil || mse != 0 {
		t.Errorf("MSE identical = %v, %v", mse, err)
	}
	psnr, _ := PSNR(a, a.Clone())
	if !math.IsInf(psnr, 1) {
		t.Errorf("PSNR identical = %v, want +Inf", psnr)
	}

	b := constant(10, 10, 10)
	mse, _ = MSE(a, b)
	if mse != 100 {
		t.Errorf("MSE = %v, want 100", mse)
	}
	psnr, _ = PSNR(a, b)
	want := 10 * math.Log10(255*255/100.0)
	if !approx(psnr, want, 1e-12) {
		t.Errorf("PSNR = %v, want %v", psnr, want)
	}

	if _, err := MSE(a, constant(9, 10, 0)); !errors.Is(err, helix.ErrShapeMismatch) {
		t.Errorf("MSE shape mismatch: got %v", err)
	}
	if _, err := PSNR(a, nil); !errors.Is(err, helix.ErrShapeMismatch) {
		t.Errorf("PSNR nil: got %v", err)
	}
}

func TestSSIM(t *testing.T) {
	g := gradient(32, 24)
	s, err := SSIM(g, g.Clone())
	if err != nil {
		t.Fatalf("SSIM failed: %v", err)
	}
	if !approx(s, 1, 1e-12) {
		t.Errorf("SSIM identical = %v, want 1", s)
	}

	flat := constant(7, 7, 200)
	if s, _ := SSIM(flat, flat.Clone()); !approx(s, 1, 1e-12) {
		t.Errorf("SSIM identical flat = %v, want 1", s)
	}

	rng := rand.New(rand.NewSource(5))
	random := constant(32, 24, 0)
	rng.Read(random.Pix)
	inv := random.Clone()
	for i := range inv.Pix {
		inv.Pix[i] = 255 - inv.Pix[i]
	}
	if s, _ := SSIM(random, inv); s >= 0 {
		t.Errorf("SSIM against inverted image = %v, want negative", s)
	}

	noisy := g.Clone()
	for i := range noisy.Pix {
		v := int(noisy.Pix[i]) + rng.Intn(9) - 4
		if v < 0 {
			v = 0
		}
		noisy.Pix[i] = byte(v)
	}
	s, _ = SSIM(g, noisy)
	if s <= 0 || s >= 1 {
		t.Errorf("SSIM with mild noise = %v, want in (0, 1)", s)
	}

	if _, err := SSIM(constant(6, 10, 0), constant(6, 10, 0)); !errors.Is(err, helix.ErrImageTooSmall) {
		t.Errorf("SSIM 6x10: got %v, want ErrImageTooSmall", err)
	}
	if _, err := SSIM(g, gradient(24, 32)); !errors.Is(err, helix.ErrShapeMismatch) {
		t.Errorf("SSIM shape mismatch: got %v", err)
	}
}
