// Package chaos implements the logistic-map generators for helix.
//
// Both generators evolve x <- r*x*(1-x) in float64 from a caller-supplied (r, x0).
// State is local to each call. No parameter validation is done here; see
// core.ValidateChaos.
package chaos

const (
	// StreamWarmup is the number of discarded iterations before the byte stream.
	StreamWarmup = 50
	// PermutationWarmup is the number of discarded iterations before the permutation
	// draws. It differs from StreamWarmup to decorrelate the two outputs.
	PermutationWarmup = 100
)

// Step performs one logistic map iteration.
func Step(r, x float64) float64 {
	return r * x * (1 - x)
}

// warmup iterates the map n times from x.
func warmup(r, x float64, n int) float64 {
	for i := 0; i < n; i++ {
		x = Step(r, x)
	}
	return x
}

// ByteStream returns n keystream bytes: after StreamWarmup iterations, each further
// iteration emits floor(x*256) mod 256.
func ByteStream(n int, r, x0 float64) []byte {
	out := make([]byte, n)
	x := warmup(r, x0, StreamWarmup)
	for i := range out {
		x = Step(r, x)
		out[i] = byte(int(x*256) & 0xFF)
	}
	return out
}

// Permutation returns a bijection of [0, n) built by Fisher-Yates swaps. After
// PermutationWarmup iterations, step i swaps perm[i] with perm[floor(x*n) mod n].
func Permutation(n int, r, x0 float64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	x := warmup(r, x0, PermutationWarmup)
	for i := 0; i < n; i++ {
		x = Step(r, x)
		j := int(x*float64(n)) % n
		if j < 0 {
			j += n
		}
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Gather returns out[i] = data[perm[i]].
// Panics if len(perm) != len(data).
func Gather(data []byte, perm []int) []byte {
	if len(perm) != len(data) {
		panic("chaos: permutation length does not match data length")
	}
	out := make([]byte, len(data))
	for i, p := range perm {
		out[i] = data[p]
	}
	return out
}

// Scatter returns out[perm[i]] = data[i], the inverse of Gather.
// Panics if len(perm) != len(data).
func Scatter(data []byte, perm []int) []byte {
	if len(perm) != len(data) {
		panic("chaos: permutation length does not match data length")
	}
	out := make([]byte, len(data))
	for i, p := range perm {
		out[p] = data[i]
	}
	return out
}
