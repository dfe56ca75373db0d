// Package core provides parameter sets and validation for helix.
package core

import (
	"fmt"
	"math"

	helix "github.com/BackendStack21/helix-go"
)

// Chaotic regime bounds for the logistic map control parameter.
const (
	MinChaoticR = 3.57 // exclusive
	MaxChaoticR = 4.0  // inclusive
)

// StandardParams is the original configuration: one DNA round, two protein rounds.
var StandardParams = helix.Params{
	DNARounds:     1,
	ProteinRounds: 2,
	R:             3.99,
	X0:            0.7,
}

// ExtendedParams runs three DNA rounds of four protein rounds each.
var ExtendedParams = helix.Params{
	DNARounds:     3,
	ProteinRounds: 4,
	R:             3.9999,
	X0:            0.3141,
}

// GetParams returns the parameter set for the given profile.
func GetParams(profile helix.Profile) (helix.Params, error) {
	switch profile {
	case helix.ProfileStandard:
		return StandardParams, nil
	case helix.ProfileExtended:
		return ExtendedParams, nil
	default:
		return helix.Params{}, fmt.Errorf("unknown profile: %s", profile)
	}
}

// ParseProfile maps user input to a profile. The empty string selects the standard profile.
func ParseProfile(s string) (helix.Profile, error) {
	switch s {
	case "", "standard", "std":
		return helix.ProfileStandard, nil
	case "extended", "ext":
		return helix.ProfileExtended, nil
	default:
		return "", fmt.Errorf("unknown profile %q, must be one of: standard, extended", s)
	}
}

// ValidateParams checks round counts and flags chaos parameters outside the chaotic regime.
// The transform itself accepts any input; this is a caller-side configuration check.
func ValidateParams(params helix.Params) error {
	if err := ValidateRounds(params.DNARounds, params.ProteinRounds); err != nil {
		return err
	}
	return ValidateChaos(params.R, params.X0)
}

// ValidateRounds requires both round counts to be at least 1.
func ValidateRounds(dnaRounds, proteinRounds int) error {
	if dnaRounds < 1 {
		return fmt.Errorf("%w: dna_rounds=%d", helix.ErrInvalidRounds, dnaRounds)
	}
	if proteinRounds < 1 {
		return fmt.Errorf("%w: protein_rounds=%d", helix.ErrInvalidRounds, proteinRounds)
	}
	return nil
}

// ValidateChaos rejects r outside (3.57, 4.0] and x0 outside the open interval (0, 1).
func ValidateChaos(r, x0 float64) error {
	if math.IsNaN(r) || r <= MinChaoticR || r > MaxChaoticR {
		return fmt.Errorf("%w: r=%v not in (%v, %v]", helix.ErrDegenerateChaos, r, MinChaoticR, MaxChaoticR)
	}
	if math.IsNaN(x0) || x0 <= 0 || x0 >= 1 {
		return fmt.Errorf("%w: x0=%v not in (0, 1)", helix.ErrDegenerateChaos, x0)
	}
	return nil
}

// KeyMix folds the round configuration into a byte added at every diffusion step.
func KeyMix(dnaRounds, proteinRounds int) byte {
	m := (dnaRounds + 2*proteinRounds) % 256
	if m < 0 {
		m += 256
	}
	return byte(m)
}
