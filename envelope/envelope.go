// Package envelope implements the sealed container for helix ciphertexts.
//
// Layout (little-endian):
//
//	magic "HLX1" | version u8 | flags u8 | width u32 | height u32 |
//	dna_rounds u16 | protein_rounds u16 | payload_len u32 | fingerprint [16] |
//	payload | checksum [32]
//
// The fingerprint is a domain-separated SHA3-256 of the full parameter set, so Open
// can refuse parameters that differ from the ones used to seal. The checksum is
// SHA3-256 over everything before it. Flag bit 0 marks a zstd-compressed payload.
package envelope

import (
	"encoding/binary"
	"fmt"
	"math"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/utils"
)

const (
	// Magic opens every envelope.
	Magic = "HLX1"
	// Version is the current format version; others are rejected.
	Version = 1

	// DomainFingerprint separates the parameter fingerprint hash.
	DomainFingerprint = "helix-envelope-fingerprint-v1"

	// FlagCompressed marks a zstd-compressed payload.
	FlagCompressed = 1 << 0

	// FingerprintSize is the truncated SHA3-256 length of the parameter fingerprint.
	FingerprintSize = 16
	// ChecksumSize is the SHA3-256 trailer length.
	ChecksumSize = 32
	// HeaderSize is the fixed byte length of the header, fingerprint included.
	HeaderSize = 4 + 1 + 1 + 4 + 4 + 2 + 2 + 4 + FingerprintSize

	// MaxDimension bounds width and height.
	MaxDimension = 1 << 16
	// MaxPixels bounds width*height.
	MaxPixels = 1 << 28
)

// Header is the parsed metadata of an envelope.
type Header struct {
	Version       int
	Flags         byte
	Width         int
	Height        int
	DNARounds     int
	ProteinRounds int
	PayloadLen    int
	Fingerprint   []byte
}

// Compressed reports whether the payload is zstd-compressed.
func (h *Header) Compressed() bool {
	return h.Flags&FlagCompressed != 0
}

// Pixels returns Width*Height.
func (h *Header) Pixels() int {
	return h.Width * h.Height
}

// Sealed is an opened envelope.
type Sealed struct {
	Header     Header
	Ciphertext []byte
}

// Fingerprint returns the 16-byte parameter fingerprint stored in envelopes.
func Fingerprint(params helix.Params) []byte {
	buf := make([]byte, 4+8+8)
	binary.LittleEndian.PutUint16(buf[0:], uint16(params.DNARounds))
	binary.LittleEndian.PutUint16(buf[2:], uint16(params.ProteinRounds))
	binary.LittleEndian.PutUint64(buf[4:], math.Float64bits(params.R))
	binary.LittleEndian.PutUint64(buf[12:], math.Float64bits(params.X0))
	return utils.HashWithDomain(DomainFingerprint, buf)[:FingerprintSize]
}

// Seal wraps a width x height ciphertext produced with params.
// The payload is stored zstd-compressed only when that is smaller.
func Seal(ciphertext []byte, width, height int, params helix.Params) ([]byte, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if len(ciphertext) != width*height {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", helix.ErrLengthMismatch, len(ciphertext), width, height)
	}
	if params.DNARounds < 1 || params.DNARounds > math.MaxUint16 ||
		params.ProteinRounds < 1 || params.ProteinRounds > math.MaxUint16 {
		return nil, fmt.Errorf("%w: dna=%d protein=%d", helix.ErrInvalidRounds, params.DNARounds, params.ProteinRounds)
	}

	h := Header{
		Version:       Version,
		Width:         width,
		Height:        height,
		DNARounds:     params.DNARounds,
		ProteinRounds: params.ProteinRounds,
		Fingerprint:   Fingerprint(params),
	}
	payload := ciphertext
	if compressed, err := encodeZstd(ciphertext); err == nil && len(compressed) < len(ciphertext) {
		payload = compressed
		h.Flags |= FlagCompressed
	}
	return marshal(&h, payload), nil
}

// Inspect parses and verifies an envelope without checking parameters.
func Inspect(data []byte) (*Header, error) {
	h, _, err := parse(data)
	return h, err
}

// Open verifies an envelope against params and returns its ciphertext.
func Open(data []byte, params helix.Params) (*Sealed, error) {
	h, payload, err := parse(data)
	if err != nil {
		return nil, err
	}
	if h.DNARounds != params.DNARounds || h.ProteinRounds != params.ProteinRounds {
		return nil, fmt.Errorf("%w: sealed with dna=%d protein=%d, got dna=%d protein=%d",
			helix.ErrKeyMismatch, h.DNARounds, h.ProteinRounds, params.DNARounds, params.ProteinRounds)
	}
	if !utils.ConstantTimeEqual(h.Fingerprint, Fingerprint(params)) {
		return nil, fmt.Errorf("%w: fingerprint differs", helix.ErrKeyMismatch)
	}

	var ciphertext []byte
	if h.Compressed() {
		ciphertext, err = decodeZstd(payload, h.Pixels())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", helix.ErrInvalidEnvelope, err)
		}
	} else {
		ciphertext = append([]byte(nil), payload...)
	}
	if len(ciphertext) != h.Pixels() {
		return nil, fmt.Errorf("%w: payload holds %d bytes, header implies %dx%d",
			helix.ErrLengthMismatch, len(ciphertext), h.Width, h.Height)
	}
	return &Sealed{Header: *h, Ciphertext: ciphertext}, nil
}

func checkDimensions(width, height int) error {
	if width < 0 || height < 0 || width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: invalid dimensions %dx%d", helix.ErrShapeMismatch, width, height)
	}
	pixels, err := utils.SafeMultiply(width, height)
	if err != nil {
		return err
	}
	return utils.CheckLength(pixels, MaxPixels)
}

// marshal serializes h and payload and appends the checksum. h.PayloadLen is set.
func marshal(h *Header, payload []byte) []byte {
	h.PayloadLen = len(payload)
	out := make([]byte, HeaderSize, HeaderSize+len(payload)+ChecksumSize)
	copy(out, Magic)
	out[4] = byte(h.Version)
	out[5] = h.Flags
	binary.LittleEndian.PutUint32(out[6:], uint32(h.Width))
	binary.LittleEndian.PutUint32(out[10:], uint32(h.Height))
	binary.LittleEndian.PutUint16(out[14:], uint16(h.DNARounds))
	binary.LittleEndian.PutUint16(out[16:], uint16(h.ProteinRounds))
	binary.LittleEndian.PutUint32(out[18:], uint32(len(payload)))
	copy(out[22:HeaderSize], h.Fingerprint)
	out = append(out, payload...)
	return append(out, utils.SHA3256(out)...)
}

// parse validates structure and checksum and returns the header and raw payload.
func parse(data []byte) (*Header, []byte, error) {
	if len(data) < HeaderSize+ChecksumSize {
		return nil, nil, fmt.Errorf("%w: %d bytes is too short", helix.ErrInvalidEnvelope, len(data))
	}
	if string(data[:4]) != Magic {
		return nil, nil, fmt.Errorf("%w: bad magic", helix.ErrInvalidEnvelope)
	}
	if data[4] != Version {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", helix.ErrInvalidEnvelope, data[4])
	}

	h := &Header{
		Version:       int(data[4]),
		Flags:         data[5],
		Width:         int(binary.LittleEndian.Uint32(data[6:])),
		Height:        int(binary.LittleEndian.Uint32(data[10:])),
		DNARounds:     int(binary.LittleEndian.Uint16(data[14:])),
		ProteinRounds: int(binary.LittleEndian.Uint16(data[16:])),
	}
	if h.Flags&^FlagCompressed != 0 {
		return nil, nil, fmt.Errorf("%w: unknown flags %#x", helix.ErrInvalidEnvelope, h.Flags)
	}
	if err := checkDimensions(h.Width, h.Height); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", helix.ErrInvalidEnvelope, err)
	}

	payloadLen, off, err := utils.SafeReadLength(data, 18, MaxPixels)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: payload length: %v", helix.ErrInvalidEnvelope, err)
	}
	h.PayloadLen = payloadLen
	off += FingerprintSize
	h.Fingerprint = append([]byte(nil), data[22:off]...)

	if err := utils.ValidateSliceAccess(data, off, payloadLen); err != nil {
		return nil, nil, fmt.Errorf("%w: payload: %v", helix.ErrInvalidEnvelope, err)
	}
	end := off + payloadLen
	if len(data) != end+ChecksumSize {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes, want %d", helix.ErrInvalidEnvelope, len(data)-end, ChecksumSize)
	}
	if !utils.ConstantTimeEqual(data[end:], utils.SHA3256(data[:end])) {
		return nil, nil, fmt.Errorf("%w: checksum mismatch", helix.ErrInvalidEnvelope)
	}
	return h, data[off:end], nil
}
