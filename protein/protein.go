// Package protein implements the round-based circular permutation of symbol groups.
//
// In round p every group is rotated right by (sum(group) + p) mod 4. Rotation permutes
// the symbols without changing their sum, so the inverse recomputes the same shift from
// the rotated group and rotates left, undoing rounds in reverse order.
package protein

import (
	helix "github.com/BackendStack21/helix-go"
)

// Shift returns the rotation amount for group g in round p.
func Shift(g helix.SymbolGroup, round int) int {
	return (g.Sum() + round) % 4
}

// RotateRight rotates g right by s positions: out[i] = g[(i-s) mod 4].
func RotateRight(g helix.SymbolGroup, s int) helix.SymbolGroup {
	s &= 3
	return helix.SymbolGroup{g[(4-s)&3], g[(5-s)&3], g[(6-s)&3], g[(7-s)&3]}
}

// RotateLeft rotates g left by s positions: out[i] = g[(i+s) mod 4].
func RotateLeft(g helix.SymbolGroup, s int) helix.SymbolGroup {
	s &= 3
	return helix.SymbolGroup{g[s&3], g[(s+1)&3], g[(s+2)&3], g[(s+3)&3]}
}

// PermuteGroup applies rounds forward rounds to a single group.
func PermuteGroup(g helix.SymbolGroup, rounds int) helix.SymbolGroup {
	for p := 0; p < rounds; p++ {
		g = RotateRight(g, Shift(g, p))
	}
	return g
}

// InverseGroup undoes PermuteGroup with the same round count.
func InverseGroup(g helix.SymbolGroup, rounds int) helix.SymbolGroup {
	for p := rounds - 1; p >= 0; p-- {
		g = RotateLeft(g, Shift(g, p))
	}
	return g
}

// Permute applies rounds forward rounds to every group in place.
func Permute(groups []helix.SymbolGroup, rounds int) {
	for i := range groups {
		groups[i] = PermuteGroup(groups[i], rounds)
	}
}

// Inverse undoes Permute in place.
func Inverse(groups []helix.SymbolGroup, rounds int) {
	for i := range groups {
		groups[i] = InverseGroup(groups[i], rounds)
	}
}
