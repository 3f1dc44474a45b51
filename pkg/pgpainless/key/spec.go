package key

import (
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Spec describes one key to be generated: its algorithm, the capabilities its
// binding signature will carry, and how that signature's subpackets are
// built. A Spec is a plain value; validation happens when it is assigned to a
// generator or editor, so misconfiguration fails before any key material
// exists.
type Spec struct {
	Algorithm Algorithm
	Flags     Flags

	// Inherit makes a subkey's binding signature reuse the ring-level
	// defaults (key lifetime, preferences) instead of carrying only its own
	// flags.
	Inherit bool

	// Subpackets, if set, runs over the prepared binding or
	// self-certification signature before it is signed.
	Subpackets func(*packet.Signature)
}

// Primary returns a certification-capable primary key spec.
func Primary(algo Algorithm) Spec {
	return Spec{Algorithm: algo, Flags: FlagCertify, Inherit: true}
}

// Signing returns a data-signing subkey spec.
func Signing(algo Algorithm) Spec {
	return Spec{Algorithm: algo, Flags: FlagSign, Inherit: true}
}

// Encryption returns an encryption subkey spec covering both communications
// and storage.
func Encryption(algo Algorithm) Spec {
	return Spec{Algorithm: algo, Flags: FlagEncrypt, Inherit: true}
}

// Authentication returns an authentication subkey spec.
func Authentication(algo Algorithm) Spec {
	return Spec{Algorithm: algo, Flags: FlagAuthenticate, Inherit: true}
}

// Validate checks that the spec's algorithm exists and can serve every
// requested capability.
func (s Spec) Validate() error {
	if _, err := ParseAlgorithm(string(s.Algorithm)); err != nil {
		return err
	}
	if s.Flags == 0 {
		return pgperrors.PreconditionError("key spec carries no capability flags")
	}
	if s.Flags.HasAny(FlagCertify|FlagSign|FlagAuthenticate) && !s.Algorithm.CanSign() {
		return pgperrors.PreconditionError(fmt.Sprintf("algorithm %s cannot sign", s.Algorithm))
	}
	if s.Flags.HasAny(FlagEncrypt) && !s.Algorithm.CanEncrypt() {
		return pgperrors.PreconditionError(fmt.Sprintf("algorithm %s cannot encrypt", s.Algorithm))
	}
	return nil
}

// ValidateForPrimary checks the primary-key invariants on top of Validate:
// the certify flag must be declared and the algorithm must be
// certification-capable.
func (s Spec) ValidateForPrimary() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.Flags.Has(FlagCertify) {
		return pgperrors.PreconditionError("primary key spec must declare the certify flag")
	}
	if !s.Algorithm.CanCertify() {
		return pgperrors.PreconditionError(fmt.Sprintf("algorithm %s cannot certify", s.Algorithm))
	}
	return nil
}
