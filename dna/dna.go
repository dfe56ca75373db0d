// Package dna implements the symbol codec: each byte is split into four 2-bit
// "nucleotide" symbols, most significant first.
package dna

import (
	helix "github.com/BackendStack21/helix-go"
)

// Encode splits b into its four 2-bit symbols.
func Encode(b byte) helix.SymbolGroup {
	return helix.SymbolGroup{b >> 6 & 3, b >> 4 & 3, b >> 2 & 3, b & 3}
}

// Decode reassembles a byte from four symbols. Bits above the low two of each symbol are ignored.
func Decode(g helix.SymbolGroup) byte {
	return (g[0]&3)<<6 | (g[1]&3)<<4 | (g[2]&3)<<2 | g[3]&3
}

// EncodeBytes encodes every byte of data into an n x 4 symbol matrix.
func EncodeBytes(data []byte) []helix.SymbolGroup {
	groups := make([]helix.SymbolGroup, len(data))
	for i, b := range data {
		groups[i] = Encode(b)
	}
	return groups
}

// DecodeGroups is the inverse of EncodeBytes.
func DecodeGroups(groups []helix.SymbolGroup) []byte {
	out := make([]byte, len(groups))
	for i, g := range groups {
		out[i] = Decode(g)
	}
	return out
}
