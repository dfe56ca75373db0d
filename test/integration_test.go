// Package test provides integration tests for the helix implementation.
// These tests verify cross-component integration and the statistical behaviour of the cipher.
package test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/core"
	"github.com/BackendStack21/helix-go/envelope"
	"github.com/BackendStack21/helix-go/imageio"
	"github.com/BackendStack21/helix-go/metrics"
	"github.com/BackendStack21/helix-go/pipeline"
)

func gradient(t testing.TB, size int) *helix.Grid {
	t.Helper()
	pix := make([]byte, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			pix[y*size+x] = byte(x + y)
		}
	}
	g, err := helix.NewGrid(size, size, pix)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func constant(t testing.TB, size int, v byte) *helix.Grid {
	t.Helper()
	g, err := helix.NewGrid(size, size, bytes.Repeat([]byte{v}, size*size))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// TestStatisticalProperties checks that encryption destroys the structure of a smooth image.
func TestStatisticalProperties(t *testing.T) {
	g := gradient(t, 256)
	p := core.StandardParams

	enc, err := pipeline.EncryptGrid(g, p)
	if err != nil {
		t.Fatalf("EncryptGrid failed: %v", err)
	}

	if h := metrics.Entropy(enc.Pix); h < 7.99 {
		t.Errorf("ciphertext entropy = %.4f, want >= 7.99", h)
	}
	for _, d := range []metrics.Direction{metrics.Horizontal, metrics.Vertical, metrics.Diagonal} {
		orig := metrics.Correlation(g, d)
		encC := metrics.Correlation(enc, d)
		if orig < 0.9 {
			t.Errorf("plain %c correlation = %.4f, want > 0.9", d, orig)
		}
		if math.Abs(encC) > 0.02 {
			t.Errorf("cipher %c correlation = %.4f, want ~0", d, encC)
		}
	}

	ssim, err := metrics.SSIM(g, enc)
	if err != nil {
		t.Fatalf("SSIM failed: %v", err)
	}
	if math.Abs(ssim) > 0.05 {
		t.Errorf("SSIM(plain, cipher) = %.4f, want ~0", ssim)
	}
}

// TestSensitivity encrypts a mid-gray image and a copy with the center pixel flipped.
func TestSensitivity(t *testing.T) {
	g := constant(t, 256, 128)
	p := core.ExtendedParams

	npcr, uaci, err := metrics.Sensitivity(g, pipeline.Encrypt, p.DNARounds, p.ProteinRounds, p.R, p.X0)
	if err != nil {
		t.Fatalf("Sensitivity failed: %v", err)
	}
	if npcr < 99.0 {
		t.Errorf("NPCR = %.3f%%, want >= 99%%", npcr)
	}
	if uaci < 25 || uaci > 40 {
		t.Errorf("UACI = %.3f%%, want in [25, 40]", uaci)
	}
}

func TestEntropyBounds(t *testing.T) {
	random := make([]byte, 65536)
	rand.New(rand.NewSource(1)).Read(random)
	if h := metrics.Entropy(random); math.Abs(h-8) > 0.01 {
		t.Errorf("entropy of random bytes = %.5f", h)
	}
	if h := metrics.Entropy(make([]byte, 65536)); h != 0 {
		t.Errorf("entropy of zeros = %v", h)
	}
}

// TestFullReport runs the evaluator the way the API and CLI do.
func TestFullReport(t *testing.T) {
	g := gradient(t, 128)
	p := core.StandardParams

	enc, _ := pipeline.EncryptGrid(g, p)
	dec, _ := pipeline.DecryptGrid(enc, p)
	report, err := metrics.Evaluate(g, enc, dec, pipeline.Encrypt, p.DNARounds, p.ProteinRounds, p.R, p.X0)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report[helix.MetricMSEDec] != 0 || !math.IsInf(report[helix.MetricPSNRDec], 1) || report[helix.MetricSSIMDec] < 0.9999 {
		t.Errorf("decrypted image not identical: %v", report)
	}
	if report[helix.MetricEntropyEnc] <= report[helix.MetricEntropyOrig] {
		t.Errorf("encryption did not raise entropy: %v", report)
	}
	if report[helix.MetricMSEEnc] < 1000 {
		t.Errorf("MSE_enc = %.1f, want large", report[helix.MetricMSEEnc])
	}
}

// TestFileAndEnvelopePipeline writes the ciphertext as a PNG and as an envelope and
// decrypts both.
func TestFileAndEnvelopePipeline(t *testing.T) {
	g := gradient(t, 64)
	salt := []byte("0123456789abcdef")
	p, err := core.DeriveParams([]byte("integration"), salt, helix.ProfileExtended)
	if err != nil {
		t.Fatalf("DeriveParams failed: %v", err)
	}

	enc, err := pipeline.EncryptGrid(g, p)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, enc); err != nil {
		t.Fatal(err)
	}
	fromPNG, _, err := imageio.DecodeBytes(buf.Bytes(), 0)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := pipeline.DecryptGrid(fromPNG, p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec.Pix, g.Pix) {
		t.Error("PNG round trip failed")
	}

	sealed, err := envelope.Seal(enc.Pix, enc.Width, enc.Height, p)
	if err != nil {
		t.Fatal(err)
	}
	other, _ := core.DeriveParams([]byte("integration!"), salt, helix.ProfileExtended)
	if _, err := envelope.Open(sealed, other); !errors.Is(err, helix.ErrKeyMismatch) {
		t.Errorf("Open with other passphrase: got %v, want ErrKeyMismatch", err)
	}
	opened, err := envelope.Open(sealed, p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	out, err := pipeline.DecryptParams(opened.Ciphertext, p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, g.Pix) {
		t.Error("envelope round trip failed")
	}
}

func TestBatchMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inputs := make([][]byte, 12)
	for i := range inputs {
		inputs[i] = make([]byte, 100+rng.Intn(2000))
		rng.Read(inputs[i])
	}
	p := core.ExtendedParams

	enc, err := pipeline.EncryptBatch(context.Background(), inputs, p, 4)
	if err != nil {
		t.Fatalf("EncryptBatch failed: %v", err)
	}
	for i, in := range inputs {
		if want := pipeline.Encrypt(in, p.DNARounds, p.ProteinRounds, p.R, p.X0); !bytes.Equal(enc[i], want) {
			t.Errorf("item %d differs from sequential encryption", i)
		}
	}
	dec, err := pipeline.DecryptBatch(context.Background(), enc, p, 3)
	if err != nil {
		t.Fatalf("DecryptBatch failed: %v", err)
	}
	for i := range inputs {
		if !bytes.Equal(dec[i], inputs[i]) {
			t.Errorf("item %d did not round trip", i)
		}
	}
}
