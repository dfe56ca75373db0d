package metrics

import (
	"errors"
	"fmt"
	"sync"

	helix "github.com/BackendStack21/helix-go"
)

// Evaluate computes the full metric report for an encryption run.
//
// original, encrypted and decrypted must share identical dimensions. encrypt is called
// once, on a copy of original whose centre pixel is XORed by 128, to measure NPCR/UACI
// against encrypted. SSIM keys are omitted for images smaller than 7x7.
func Evaluate(original, encrypted, decrypted *helix.Grid, encrypt helix.EncryptFunc,
	dnaRounds, proteinRounds int, r, x0 float64) (helix.Report, error) {
	if encrypt == nil {
		return nil, errors.New("nil encrypt function")
	}
	if err := sameShape(original, encrypted); err != nil {
		return nil, fmt.Errorf("original vs encrypted: %w", err)
	}
	if err := sameShape(original, decrypted); err != nil {
		return nil, fmt.Errorf("original vs decrypted: %w", err)
	}
	if len(original.Pix) == 0 {
		return nil, fmt.Errorf("%w: empty image", helix.ErrImageTooSmall)
	}

	// Re-encrypt the perturbed plaintext while the statistics are computed.
	var wg sync.WaitGroup
	var modified *helix.Grid
	var modErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		modified, modErr = encryptAs(original, PerturbCenter(original).Pix, encrypt, dnaRounds, proteinRounds, r, x0)
	}()

	report := helix.Report{}

	mseEnc, _ := MSE(original, encrypted)
	mseDec, _ := MSE(original, decrypted)
	report[helix.MetricMSEEnc] = mseEnc
	report[helix.MetricPSNREnc] = psnrFromMSE(mseEnc)
	report[helix.MetricMSEDec] = mseDec
	report[helix.MetricPSNRDec] = psnrFromMSE(mseDec)

	if ssimEnc, err := SSIM(original, encrypted); err == nil {
		report[helix.MetricSSIMEnc] = ssimEnc
		ssimDec, _ := SSIM(original, decrypted)
		report[helix.MetricSSIMDec] = ssimDec
	}

	report[helix.MetricEntropyOrig] = Entropy(original.Pix)
	report[helix.MetricEntropyEnc] = Entropy(encrypted.Pix)

	report[helix.MetricCorrHOrig] = Correlation(original, Horizontal)
	report[helix.MetricCorrVOrig] = Correlation(original, Vertical)
	report[helix.MetricCorrDOrig] = Correlation(original, Diagonal)
	report[helix.MetricCorrHEnc] = Correlation(encrypted, Horizontal)
	report[helix.MetricCorrVEnc] = Correlation(encrypted, Vertical)
	report[helix.MetricCorrDEnc] = Correlation(encrypted, Diagonal)

	wg.Wait()
	if modErr != nil {
		return nil, modErr
	}
	npcr, uaci, err := NPCRUACI(encrypted, modified)
	if err != nil {
		return nil, err
	}
	report[helix.MetricNPCR] = npcr
	report[helix.MetricUACI] = uaci

	return report, nil
}
