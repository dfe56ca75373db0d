// Package diffusion implements the two-pass keyed chaining diffusion of helix.
//
// Forward pass, i ascending:  out[i] = in[i] + prev + ks[i] + k, prev starts at ks[0].
// Backward pass, i descending: out[i] = out[i] + prev + ks[i] + k, prev starts at ks[n-1].
// prev always takes the just-written output byte. All arithmetic is mod 256.
// The chain is strictly sequential; every output byte depends on every input byte.
package diffusion

// Forward diffuses data with keystream ks and key-mix constant k and returns a new slice.
// Panics if len(ks) != len(data).
func Forward(data, ks []byte, k byte) []byte {
	checkLengths(data, ks)
	n := len(data)
	out := make([]byte, n)
	if n == 0 {
		return out
	}

	prev := ks[0]
	for i := 0; i < n; i++ {
		out[i] = data[i] + prev + ks[i] + k
		prev = out[i]
	}

	prev = ks[n-1]
	for i := n - 1; i >= 0; i-- {
		out[i] = out[i] + prev + ks[i] + k
		prev = out[i]
	}
	return out
}

// Inverse undoes Forward with the same keystream and key-mix constant.
// Panics if len(ks) != len(data).
func Inverse(data, ks []byte, k byte) []byte {
	checkLengths(data, ks)
	n := len(data)
	out := make([]byte, n)
	copy(out, data)
	if n == 0 {
		return out
	}

	// prev is the ciphertext byte before it is overwritten.
	prev := ks[n-1]
	for i := n - 1; i >= 0; i-- {
		c := out[i]
		out[i] = c - prev - ks[i] - k
		prev = c
	}

	prev = ks[0]
	for i := 0; i < n; i++ {
		c := out[i]
		out[i] = c - prev - ks[i] - k
		prev = c
	}
	return out
}

func checkLengths(data, ks []byte) {
	if len(data) != len(ks) {
		panic("diffusion: keystream length does not match data length")
	}
}
