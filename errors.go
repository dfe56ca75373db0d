package helix

import "errors"

var (
	// ErrShapeMismatch is returned when compared images differ in dimensions.
	ErrShapeMismatch = errors.New("helix: image shape mismatch")

	// ErrLengthMismatch is returned when a buffer length disagrees with the length implied
	// by its dimensions or stored metadata.
	ErrLengthMismatch = errors.New("helix: length mismatch")

	// ErrDegenerateChaos is returned when r or x0 lies outside the chaotic operating regime.
	ErrDegenerateChaos = errors.New("helix: degenerate chaos parameter")

	// ErrInvalidRounds is returned when a round count is below 1.
	ErrInvalidRounds = errors.New("helix: round counts must be at least 1")

	// ErrImageTooSmall is returned when an image is below the minimum size of a metric window.
	ErrImageTooSmall = errors.New("helix: image too small")

	// ErrKeyMismatch is returned when a sealed envelope was produced with other parameters.
	ErrKeyMismatch = errors.New("helix: parameters do not match envelope")

	// ErrInvalidEnvelope is returned for malformed or corrupted envelopes.
	ErrInvalidEnvelope = errors.New("helix: invalid envelope")
)
