package core

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/sha3"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/utils"
)

const (
	// DomainDerive separates the SHAKE expansion of the stretched key.
	DomainDerive = "helix-derive-chaos-v1"

	// DeriveIterations is the PBKDF2 iteration count for passphrase stretching.
	DeriveIterations = 100000

	// MinSaltSize is the minimum accepted salt length in bytes.
	MinSaltSize = 16
)

// Derived parameter ranges. Both stay well inside the chaotic regime.
const (
	derivedRMin  = 3.9
	derivedRSpan = 0.1
	derivedXMin  = 0.05
	derivedXSpan = 0.9
)

// DeriveParams derives r and x0 from a passphrase and salt. Round counts come from profile.
// The passphrase is stretched with PBKDF2-SHA3-256 and expanded with SHAKE256.
func DeriveParams(passphrase, salt []byte, profile helix.Profile) (helix.Params, error) {
	if len(passphrase) == 0 {
		return helix.Params{}, errors.New("passphrase must not be empty")
	}
	if len(salt) < MinSaltSize {
		return helix.Params{}, errors.New("salt must be at least 16 bytes")
	}
	params, err := GetParams(profile)
	if err != nil {
		return helix.Params{}, err
	}

	key := pbkdf2.Key(passphrase, salt, DeriveIterations, 32, sha3.New256)
	material := utils.Shake256WithDomain(DomainDerive, key, 16)
	utils.Zeroize(key)

	params.R = derivedRMin + derivedRSpan*unitFloat(material[0:8])
	params.X0 = derivedXMin + derivedXSpan*unitFloat(material[8:16])
	utils.Zeroize(material)

	return params, nil
}

// unitFloat maps 8 bytes to a float64 in [0, 1) using the top 53 bits.
func unitFloat(b []byte) float64 {
	return float64(binary.LittleEndian.Uint64(b)>>11) / (1 << 53)
}
