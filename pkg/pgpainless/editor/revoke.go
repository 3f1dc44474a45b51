package editor

import (
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// RevocationAttributes qualify a revocation with a reason class and a
// human-readable message. A nil *RevocationAttributes means the default
// hard revocation (key compromised).
type RevocationAttributes struct {
	Reason  packet.ReasonForRevocation
	Message string
}

// ParseRevocationReason maps a reason name to its wire value. "compromised"
// and "none" produce hard revocations; "superseded" and "retired" are soft.
func ParseRevocationReason(s string) (packet.ReasonForRevocation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compromised":
		return packet.KeyCompromised, nil
	case "superseded":
		return packet.KeySuperseded, nil
	case "retired":
		return packet.KeyRetired, nil
	case "none":
		return packet.NoReason, nil
	case "uid-invalid":
		return packet.UserIDNotValid, nil
	}
	return packet.NoReason, pgperrors.PreconditionError(fmt.Sprintf("unknown revocation reason %q", s))
}

func validKeyReason(r packet.ReasonForRevocation) bool {
	switch r {
	case packet.NoReason, packet.KeySuperseded, packet.KeyCompromised, packet.KeyRetired:
		return true
	}
	return false
}

func validUserIDReason(r packet.ReasonForRevocation) bool {
	switch r {
	case packet.NoReason, packet.UserIDNotValid:
		return true
	}
	return false
}

// keyRevocationReason resolves the attributes for a key or subkey
// revocation: a hard compromised-key revocation unless attributes say
// otherwise.
func keyRevocationReason(attrs *RevocationAttributes) (*packet.ReasonForRevocation, string, error) {
	if attrs == nil {
		reason := packet.KeyCompromised
		return &reason, "", nil
	}
	if !validKeyReason(attrs.Reason) {
		return nil, "", pgperrors.PreconditionError(fmt.Sprintf("reason %d is not a key revocation reason", attrs.Reason))
	}
	reason := attrs.Reason
	return &reason, attrs.Message, nil
}

// userIDRevocationReason resolves the attributes for a user-id revocation:
// no reason subpacket unless attributes supply one.
func userIDRevocationReason(attrs *RevocationAttributes) (*packet.ReasonForRevocation, string, error) {
	if attrs == nil {
		return nil, "", nil
	}
	if !validUserIDReason(attrs.Reason) {
		return nil, "", pgperrors.PreconditionError(fmt.Sprintf("reason %d is not a user-id revocation reason", attrs.Reason))
	}
	reason := attrs.Reason
	return &reason, attrs.Message, nil
}

// Revoke issues a key revocation over the whole ring. The default is a hard
// revocation; this is irreversible, no operation clears it. A ring that is
// already revoked or expired can still be revoked again.
func (ed *Editor) Revoke(protector *protect.Protector, attrs *RevocationAttributes) (*Editor, error) {
	sig, err := ed.buildKeyRevocation(protector, attrs)
	if err != nil {
		return nil, err
	}
	return ed.next(ed.skm.WithKeyRevocation(sig)), nil
}

// RevocationCertificate issues a detached key revocation without applying
// it to the ring, for out-of-band distribution.
func (ed *Editor) RevocationCertificate(protector *protect.Protector, attrs *RevocationAttributes) (*packet.Signature, error) {
	return ed.buildKeyRevocation(protector, attrs)
}

func (ed *Editor) buildKeyRevocation(protector *protect.Protector, attrs *RevocationAttributes) (*packet.Signature, error) {
	reason, text, err := keyRevocationReason(attrs)
	if err != nil {
		return nil, err
	}
	pub, priv, err := ed.unlockedPrimary(protector)
	if err != nil {
		return nil, err
	}
	return sign.KeyRevocation(pub, priv, reason, text, nil, ed.Config)
}

// RevokeSubkey revokes the binding of the subkey identified by its key id.
func (ed *Editor) RevokeSubkey(keyID uint64, protector *protect.Protector, attrs *RevocationAttributes) (*Editor, error) {
	sig, subID, err := ed.buildSubkeyRevocation(keyLookupByID(keyID), protector, attrs)
	if err != nil {
		return nil, err
	}
	skm, err := ed.skm.WithSubkeyRevocation(subID, sig)
	if err != nil {
		return nil, err
	}
	return ed.next(skm), nil
}

// RevokeSubkeyByFingerprint revokes the binding of the subkey identified by
// its fingerprint.
func (ed *Editor) RevokeSubkeyByFingerprint(fingerprint string, protector *protect.Protector, attrs *RevocationAttributes) (*Editor, error) {
	sig, subID, err := ed.buildSubkeyRevocation(keyLookupByFingerprint(fingerprint), protector, attrs)
	if err != nil {
		return nil, err
	}
	skm, err := ed.skm.WithSubkeyRevocation(subID, sig)
	if err != nil {
		return nil, err
	}
	return ed.next(skm), nil
}

// SubkeyRevocationCertificate issues a detached revocation for one subkey
// without applying it to the ring.
func (ed *Editor) SubkeyRevocationCertificate(fingerprint string, protector *protect.Protector, attrs *RevocationAttributes) (*packet.Signature, error) {
	sig, _, err := ed.buildSubkeyRevocation(keyLookupByFingerprint(fingerprint), protector, attrs)
	return sig, err
}

type keyLookup func(c *cert.Certificate) (cert.BoundKey, bool)

func keyLookupByID(keyID uint64) keyLookup {
	return func(c *cert.Certificate) (cert.BoundKey, bool) {
		return c.Key(keyID)
	}
}

func keyLookupByFingerprint(fingerprint string) keyLookup {
	return func(c *cert.Certificate) (cert.BoundKey, bool) {
		return c.KeyByFingerprint(fingerprint)
	}
}

func (ed *Editor) buildSubkeyRevocation(lookup keyLookup, protector *protect.Protector, attrs *RevocationAttributes) (*packet.Signature, uint64, error) {
	reason, text, err := keyRevocationReason(attrs)
	if err != nil {
		return nil, 0, err
	}
	bk, ok := lookup(ed.skm.Certificate())
	if !ok || bk.Primary {
		return nil, 0, pgperrors.NotFoundError("no matching subkey on ring " + ed.skm.Fingerprint())
	}
	pub, priv, err := ed.unlockedPrimary(protector)
	if err != nil {
		return nil, 0, err
	}
	sig, err := sign.SubkeyRevocation(pub, priv, bk.PublicKey, reason, text, nil, ed.Config)
	if err != nil {
		return nil, 0, err
	}
	return sig, bk.PublicKey.KeyId, nil
}

// RevokeUserID revokes one user id's self-certification. Other user ids are
// unaffected.
func (ed *Editor) RevokeUserID(uid string, protector *protect.Protector, attrs *RevocationAttributes) (*Editor, error) {
	reason, text, err := userIDRevocationReason(attrs)
	if err != nil {
		return nil, err
	}
	if _, ok := ed.skm.Certificate().Identity(uid); !ok {
		return nil, pgperrors.NotFoundError(fmt.Sprintf("user id %q is not present on ring %s", uid, ed.skm.Fingerprint()))
	}
	pub, priv, err := ed.unlockedPrimary(protector)
	if err != nil {
		return nil, err
	}
	sig, err := sign.CertificationRevocation(uid, pub, priv, reason, text, nil, ed.Config)
	if err != nil {
		return nil, err
	}
	skm, err := ed.skm.WithUserIDRevocation(uid, sig)
	if err != nil {
		return nil, err
	}
	return ed.next(skm), nil
}
