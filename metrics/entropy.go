// Package metrics implements the quality evaluator for helix: entropy, adjacent-pixel
// correlation, plaintext sensitivity (NPCR/UACI) and full-reference fidelity
// (MSE/PSNR/SSIM). All functions are pure.
package metrics

import "math"

// Histogram returns the 256-bin histogram of data.
func Histogram(data []byte) [256]int {
	var h [256]int
	for _, b := range data {
		h[b]++
	}
	return h
}

// Entropy returns the base-2 Shannon entropy of the byte distribution of data, in bits.
// A constant input has entropy 0; a uniform distribution approaches 8.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	h := Histogram(data)
	n := float64(len(data))
	var e float64
	for _, c := range h {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		e -= p * math.Log2(p)
	}
	// -0 for constant input
	if e == 0 {
		return 0
	}
	return e
}
