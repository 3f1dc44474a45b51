package certify

import (
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// UserIDCertification stages a third-party certification over one user id
// of a target certificate.
type UserIDCertification struct {
	// Type is the certification type, Generic unless overridden.
	Type CertificationType
	// Policy gates the certifying key; zero value uses the default policy.
	Policy *policy.Policy
	// Config injects clock and hash; nil uses the substrate defaults.
	Config *packet.Config

	uid    string
	target *cert.Certificate
}

// UserID starts a certification of uid on the target certificate. Whether
// the user id actually exists on the target is surfaced by the injection
// step during Build, not here.
func UserID(uid string, target *cert.Certificate) *UserIDCertification {
	return &UserIDCertification{uid: uid, target: target}
}

// OfType overrides the certification type.
func (c *UserIDCertification) OfType(t CertificationType) *UserIDCertification {
	c.Type = t
	return c
}

// WithKey qualifies the certifying key and unlocks its secret material,
// returning the signer stage. The qualification order is revocation, then
// capability, then expiration, then secret-key presence.
func (c *UserIDCertification) WithKey(signer *cert.SecretKeyMaterial, protector *protect.Protector) (*UserIDSigner, error) {
	p := effectivePolicy(c.Policy)
	pub, priv, err := qualify(signer, p, c.Config.Now())
	if err != nil {
		return nil, err
	}
	unlocked, err := unlock(priv, protector)
	if err != nil {
		return nil, err
	}
	return &UserIDSigner{req: c, pub: pub, priv: unlocked}, nil
}

// UserIDSigner is the signing stage: the certifying key is qualified and
// unlocked, subpackets may still be customized before Build signs.
type UserIDSigner struct {
	req  *UserIDCertification
	pub  *packet.PublicKey
	priv *packet.PrivateKey
	fn   sign.Callback
}

// Subpackets registers a hook run over the prepared signature before it is
// signed.
func (s *UserIDSigner) Subpackets(fn func(*packet.Signature)) *UserIDSigner {
	s.fn = fn
	return s
}

// Build signs the certification over (target primary key, user id) and
// injects it into a new copy of the target certificate.
func (s *UserIDSigner) Build() (*Result, error) {
	sig := sign.New(s.pub, s.req.Type.sigType(), s.req.Config)
	if s.fn != nil {
		s.fn(sig)
	}
	if err := sig.SignUserId(s.req.uid, s.req.target.PrimaryKey(), s.priv, s.req.Config); err != nil {
		return nil, err
	}
	certified, err := s.req.target.WithUserIDCertification(s.req.uid, sig)
	if err != nil {
		return nil, err
	}
	return &Result{Certificate: certified, Signature: sig}, nil
}

func effectivePolicy(p *policy.Policy) policy.Policy {
	if p != nil {
		return *p
	}
	return policy.Default()
}
