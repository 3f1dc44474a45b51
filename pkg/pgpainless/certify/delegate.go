package certify

import (
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// Delegation stages a direct-key signature over a target certificate's
// primary key, optionally marking it a trusted introducer.
type Delegation struct {
	// Policy gates the certifying key; zero value uses the default policy.
	Policy *policy.Policy
	// Config injects clock and hash; nil uses the substrate defaults.
	Config *packet.Config

	target *cert.Certificate
	trust  *Trustworthiness
}

// Delegate starts a delegation over the target certificate. A nil trust
// issues a plain delegation with no trust subpacket; a non-nil trust sets
// the trust depth and amount, where amount zero is explicit distrust. The
// wire format carries a trust subpacket only for depth one or more, so a
// non-nil trust with depth zero fails the build.
func Delegate(target *cert.Certificate, trust *Trustworthiness) *Delegation {
	return &Delegation{target: target, trust: trust}
}

// WithKey qualifies the certifying key and unlocks its secret material,
// returning the signer stage.
func (d *Delegation) WithKey(signer *cert.SecretKeyMaterial, protector *protect.Protector) (*DelegationSigner, error) {
	p := effectivePolicy(d.Policy)
	pub, priv, err := qualify(signer, p, d.Config.Now())
	if err != nil {
		return nil, err
	}
	unlocked, err := unlock(priv, protector)
	if err != nil {
		return nil, err
	}
	return &DelegationSigner{req: d, pub: pub, priv: unlocked}, nil
}

// DelegationSigner is the signing stage of a delegation.
type DelegationSigner struct {
	req  *Delegation
	pub  *packet.PublicKey
	priv *packet.PrivateKey
	fn   sign.Callback
}

// Subpackets registers a hook run over the prepared signature before it is
// signed.
func (s *DelegationSigner) Subpackets(fn func(*packet.Signature)) *DelegationSigner {
	s.fn = fn
	return s
}

// Build signs the direct-key signature over the target's primary key and
// injects it into a new copy of the target certificate. The trust subpacket
// is serialized only when the trust level is non-zero, so a depth-zero trust
// mark would silently vanish on the wire; it is rejected instead.
func (s *DelegationSigner) Build() (*Result, error) {
	trust := s.req.trust
	if trust != nil && trust.Depth == 0 {
		return nil, pgperrors.PreconditionError("trust mark needs depth of at least one to survive serialization")
	}
	sig, err := sign.DirectKey(s.req.target.PrimaryKey(), s.pub, s.priv, func(sig *packet.Signature) {
		if trust != nil {
			sig.TrustLevel = packet.TrustLevel(trust.Depth)
			sig.TrustAmount = packet.TrustAmount(trust.Amount)
		}
		if s.fn != nil {
			s.fn(sig)
		}
	}, s.req.Config)
	if err != nil {
		return nil, err
	}
	result := &Result{Certificate: s.req.target.WithDirectSignature(sig), Signature: sig}
	if trust != nil {
		t := *trust
		result.Trust = &t
	}
	return result, nil
}
