// Package key defines the algorithms, capability flags and key
// specifications used to request new OpenPGP key material.
package key

import (
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Algorithm identifies a public-key algorithm a key pair can be generated
// with. The set is limited to what the packet layer can construct directly:
// RSA plus the modern Curve25519/Curve448 families, producing v4 keys.
type Algorithm string

const (
	AlgorithmED25519 Algorithm = "ED25519"
	AlgorithmED448   Algorithm = "ED448"
	AlgorithmX25519  Algorithm = "X25519"
	AlgorithmX448    Algorithm = "X448"
	AlgorithmRSA2048 Algorithm = "RSA2048"
	AlgorithmRSA3072 Algorithm = "RSA3072"
	AlgorithmRSA4096 Algorithm = "RSA4096"

	// DefaultAlgorithm is used when the caller expresses no preference.
	DefaultAlgorithm = AlgorithmED25519
)

// algorithms lists every supported algorithm in display order.
var algorithms = []Algorithm{
	AlgorithmED25519,
	AlgorithmED448,
	AlgorithmX25519,
	AlgorithmX448,
	AlgorithmRSA2048,
	AlgorithmRSA3072,
	AlgorithmRSA4096,
}

// ParseAlgorithm maps a case-insensitive algorithm name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	normalized := Algorithm(strings.ToUpper(strings.TrimSpace(s)))
	for _, a := range algorithms {
		if a == normalized {
			return a, nil
		}
	}
	return "", pgperrors.PreconditionError(fmt.Sprintf("unknown algorithm %q", s))
}

// CanSign reports whether keys of this algorithm can issue signatures.
func (a Algorithm) CanSign() bool {
	switch a {
	case AlgorithmED25519, AlgorithmED448, AlgorithmRSA2048, AlgorithmRSA3072, AlgorithmRSA4096:
		return true
	}
	return false
}

// CanCertify reports whether keys of this algorithm can certify user ids and
// other certificates. For the supported set this coincides with signing.
func (a Algorithm) CanCertify() bool {
	return a.CanSign()
}

// CanEncrypt reports whether keys of this algorithm can receive encrypted
// messages.
func (a Algorithm) CanEncrypt() bool {
	switch a {
	case AlgorithmX25519, AlgorithmX448, AlgorithmRSA2048, AlgorithmRSA3072, AlgorithmRSA4096:
		return true
	}
	return false
}

// Bits returns the RSA modulus size, or the curve field size for the
// elliptic algorithms.
func (a Algorithm) Bits() int {
	switch a {
	case AlgorithmRSA2048:
		return 2048
	case AlgorithmRSA3072:
		return 3072
	case AlgorithmRSA4096:
		return 4096
	case AlgorithmED25519, AlgorithmX25519:
		return 255
	case AlgorithmED448, AlgorithmX448:
		return 448
	}
	return 0
}

func (a Algorithm) String() string {
	return string(a)
}

// AlgorithmName returns the display name for a public key parsed from the
// wire, e.g. "RSA", "ED25519", "ECDSA P-256". Foreign certificates may carry
// algorithms outside the generation set; they still need names for policy
// matching and inspection output.
func AlgorithmName(pk *packet.PublicKey) string {
	switch pk.PubKeyAlgo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSAEncryptOnly, packet.PubKeyAlgoRSASignOnly:
		return "RSA"
	case packet.PubKeyAlgoDSA:
		return "DSA"
	case packet.PubKeyAlgoElGamal:
		return "ELGAMAL"
	case packet.PubKeyAlgoECDH:
		return "ECDH"
	case packet.PubKeyAlgoECDSA:
		return "ECDSA"
	case packet.PubKeyAlgoEdDSA:
		return "EDDSA"
	case packet.PubKeyAlgoX25519:
		return "X25519"
	case packet.PubKeyAlgoX448:
		return "X448"
	case packet.PubKeyAlgoEd25519:
		return "ED25519"
	case packet.PubKeyAlgoEd448:
		return "ED448"
	}
	return fmt.Sprintf("UNKNOWN(%d)", pk.PubKeyAlgo)
}

// Flags is the RFC 4880 key-flags bitset carried in binding and
// self-certification signatures.
type Flags uint8

const (
	FlagCertify Flags = 1 << iota
	FlagSign
	FlagEncryptCommunications
	FlagEncryptStorage
	FlagSplitKey
	FlagAuthenticate
	_
	FlagGroupKey
)

// FlagEncrypt combines both encryption flags; most encryption subkeys carry
// the pair.
const FlagEncrypt = FlagEncryptCommunications | FlagEncryptStorage

// Has reports whether every flag in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// HasAny reports whether at least one flag in mask is set.
func (f Flags) HasAny(mask Flags) bool {
	return f&mask != 0
}

func (f Flags) String() string {
	names := []struct {
		flag Flags
		name string
	}{
		{FlagCertify, "certify"},
		{FlagSign, "sign"},
		{FlagEncryptCommunications, "encrypt-communications"},
		{FlagEncryptStorage, "encrypt-storage"},
		{FlagSplitKey, "split-key"},
		{FlagAuthenticate, "authenticate"},
		{FlagGroupKey, "group-key"},
	}
	var set []string
	for _, n := range names {
		if f.Has(n.flag) {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "none"
	}
	return strings.Join(set, ",")
}
