package interop

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/ProtonMail/gopenpgp/v3/profile"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// SignatureMetadata reports what a detached signature claims and whether the
// claim held up against the certificate it was checked with.
type SignatureMetadata struct {
	SignedByKeyID string    `json:"signed_by_key_id,omitempty"`
	SignedAt      time.Time `json:"signed_at"`
	Verified      bool      `json:"verified"`
}

// SignDetached issues an armored detached signature over data. The most
// recently created signing-capable subkey signs; a ring without one falls
// back to a signing-capable primary key.
func SignDetached(s *cert.SecretKeyMaterial, data []byte, protector *protect.Protector, cfg *packet.Config) (string, error) {
	c := s.Certificate()
	signer, err := selectSigningKey(c, cfg.Now())
	if err != nil {
		return "", err
	}
	priv, ok := s.SecretKey(signer.PublicKey.KeyId)
	if !ok || priv.Dummy() {
		return "", pgperrors.MissingSecretKeyError{KeyID: signer.PublicKey.KeyId}
	}
	if protector == nil {
		protector = protect.Unprotected()
	}
	unlocked, err := protector.Unlock(priv)
	if err != nil {
		return "", err
	}
	sig := sign.New(signer.PublicKey, packet.SigTypeBinary, cfg)
	h := sig.Hash.New()
	h.Write(data)
	if err := sig.Sign(h, unlocked, cfg); err != nil {
		return "", fmt.Errorf("could not sign data: %w", err)
	}
	return cert.ArmorSignature(sig)
}

// VerifyDetached checks an armored detached signature over data against c and
// reports the signature's claims. A parse failure is an error; a signature
// that parses but does not verify yields Verified false.
func VerifyDetached(c *cert.Certificate, data []byte, armoredSig string) (*SignatureMetadata, error) {
	sig, err := cert.ParseSignature(strings.NewReader(armoredSig))
	if err != nil {
		return nil, err
	}
	meta := &SignatureMetadata{SignedAt: sig.CreationTime}
	if sig.IssuerKeyId != nil {
		meta.SignedByKeyID = fmt.Sprintf("%016X", *sig.IssuerKeyId)
	}

	var sigBinary bytes.Buffer
	if err := sig.Serialize(&sigBinary); err != nil {
		return nil, fmt.Errorf("could not serialize signature: %w", err)
	}
	k, err := Key(c)
	if err != nil {
		return nil, err
	}
	pgp := crypto.PGPWithProfile(profile.RFC9580())
	verifier, err := pgp.Verify().VerificationKey(k).New()
	if err != nil {
		return nil, fmt.Errorf("could not create verifier: %w", err)
	}
	result, err := verifier.VerifyDetached(data, sigBinary.Bytes(), 0)
	if err != nil {
		return meta, nil
	}
	meta.Verified = result.SignatureError() == nil
	return meta, nil
}

// selectSigningKey picks the newest validly bound signing-capable subkey,
// falling back to the primary key when it carries the sign flag itself.
func selectSigningKey(c *cert.Certificate, now time.Time) (cert.BoundKey, error) {
	var chosen cert.BoundKey
	var found bool
	for _, bk := range c.Keys() {
		if bk.Primary {
			continue
		}
		if !signingCapable(c, bk, now) {
			continue
		}
		if !found || bk.PublicKey.CreationTime.After(chosen.PublicKey.CreationTime) {
			chosen = bk
			found = true
		}
	}
	if found {
		return chosen, nil
	}
	primary, _ := c.Key(c.KeyID())
	if signingCapable(c, primary, now) {
		return primary, nil
	}
	return cert.BoundKey{}, pgperrors.PreconditionError(
		fmt.Sprintf("no usable signing key on certificate %s", c.Fingerprint()))
}

func signingCapable(c *cert.Certificate, bk cert.BoundKey, now time.Time) bool {
	if bk.Binding == nil || !sign.SignatureFlags(bk.Binding).Has(key.FlagSign) {
		return false
	}
	if !policy.ValidlyBound(c, bk.PublicKey.KeyId, now) {
		return false
	}
	if exp, ok := policy.ExpirationFor(c, bk.PublicKey.KeyId, policy.UsageSign); ok && !now.Before(exp) {
		return false
	}
	return true
}
