// Package certify issues third-party signatures: certifications over a user
// id of another certificate, and delegations (trust signatures) over a whole
// certificate. Both flows are staged builders sharing one key-qualification
// step.
package certify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
)

// CertificationType selects the assurance level of a user-id certification.
type CertificationType int

const (
	Generic CertificationType = iota
	Persona
	Casual
	Positive
)

// ParseCertificationType maps a case-insensitive name to a type.
func ParseCertificationType(s string) (CertificationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return Generic, nil
	case "persona":
		return Persona, nil
	case "casual":
		return Casual, nil
	case "positive":
		return Positive, nil
	}
	return Generic, pgperrors.PreconditionError(fmt.Sprintf("unknown certification type %q", s))
}

func (t CertificationType) sigType() packet.SignatureType {
	switch t {
	case Persona:
		return packet.SigTypePersonaCert
	case Casual:
		return packet.SigTypeCasualCert
	case Positive:
		return packet.SigTypePositiveCert
	}
	return packet.SigTypeGenericCert
}

func (t CertificationType) String() string {
	switch t {
	case Persona:
		return "persona"
	case Casual:
		return "casual"
	case Positive:
		return "positive"
	}
	return "generic"
}

// Trustworthiness marks a delegation target as a trusted introducer: depth
// is how many introduction levels are delegated, amount how completely. An
// amount of zero is an explicit distrust mark, distinct from issuing a
// delegation with no trust subpacket at all. Depth must be at least one;
// the wire format has no representation for a depth-zero trust mark.
type Trustworthiness struct {
	Depth  uint8
	Amount uint8
}

// FullyTrusted returns a trust mark delegating to the given depth with the
// conventional full amount.
func FullyTrusted(depth uint8) Trustworthiness {
	return Trustworthiness{Depth: depth, Amount: 120}
}

// MarginallyTrusted returns a trust mark delegating to the given depth with
// the conventional marginal amount.
func MarginallyTrusted(depth uint8) Trustworthiness {
	return Trustworthiness{Depth: depth, Amount: 60}
}

// Result is the outcome of a certification or delegation: the certificate
// with the new signature injected, and the signature itself. Trust echoes a
// delegation's trust mark; it is nil for plain delegations and for user-id
// certifications, keeping the marked and unmarked states distinguishable
// even where the signature fields alone would not.
type Result struct {
	Certificate *cert.Certificate
	Signature   *packet.Signature
	Trust       *Trustworthiness
}

// qualify resolves and gate-checks the certifying key. The check order is a
// behavioral contract: revocation first, then capability, then expiration,
// then secret-key presence, so callers always see the most fundamental
// failure.
func qualify(signer *cert.SecretKeyMaterial, p policy.Policy, now time.Time) (*packet.PublicKey, *packet.PrivateKey, error) {
	c := signer.Certificate()
	keyID := c.KeyID()
	bk, _ := c.Key(keyID)

	if policy.Revoked(c, keyID, now) {
		return nil, nil, pgperrors.RevokedKeyError{KeyID: keyID}
	}
	if bk.Binding == nil || !bk.Binding.FlagsValid || !bk.Binding.FlagCertify {
		return nil, nil, pgperrors.UnacceptableCertificationKeyError{KeyID: keyID, Reason: "missing certify flag"}
	}
	if !p.AllowsCertification(bk.PublicKey) {
		return nil, nil, pgperrors.UnacceptableCertificationKeyError{KeyID: keyID, Reason: "algorithm is not on the certification allow-list"}
	}
	if exp, ok := policy.ExpirationFor(c, keyID, policy.UsageCertify); ok && !now.Before(exp) {
		return nil, nil, pgperrors.ExpiredKeyError{KeyID: keyID, Expired: exp}
	}
	if bk.Binding.SigExpired(now) {
		return nil, nil, pgperrors.ExpiredKeyError{KeyID: keyID, Expired: bk.Binding.CreationTime.Add(time.Duration(*bk.Binding.SigLifetimeSecs) * time.Second)}
	}
	priv, ok := signer.SecretKey(keyID)
	if !ok || priv.Dummy() {
		return nil, nil, pgperrors.MissingSecretKeyError{KeyID: keyID}
	}
	return signer.PrimaryKey(), priv, nil
}

// unlock decrypts the qualified private key through the protector, leaving
// the ring's own packet untouched.
func unlock(priv *packet.PrivateKey, protector *protect.Protector) (*packet.PrivateKey, error) {
	if protector == nil {
		protector = protect.Unprotected()
	}
	return protector.Unlock(priv)
}
