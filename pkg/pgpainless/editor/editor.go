// Package editor mutates an existing secret key ring: user ids, subkeys,
// revocations, expiration dates and passphrases. Every operation returns a
// fresh editor over new immutable material, so a failing step never leaves
// the ring half-updated.
package editor

import (
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keygen"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// Editor is an edit session over one secret key ring. Operations chain by
// returning a new Editor; Done extracts the current material.
type Editor struct {
	// Policy gates self-signing operations; nil uses the default policy.
	Policy *policy.Policy
	// Config injects clock and hash; nil uses the substrate defaults.
	Config *packet.Config

	skm *cert.SecretKeyMaterial
}

// Edit opens an edit session over the given secret key material.
func Edit(skm *cert.SecretKeyMaterial) *Editor {
	return &Editor{skm: skm}
}

// Done returns the secret key material in its current state.
func (ed *Editor) Done() *cert.SecretKeyMaterial {
	return ed.skm
}

func (ed *Editor) next(skm *cert.SecretKeyMaterial) *Editor {
	return &Editor{Policy: ed.Policy, Config: ed.Config, skm: skm}
}

func (ed *Editor) now() time.Time {
	return ed.Config.Now()
}

// selfSigningKey gates additive operations: the primary key must be
// unrevoked, unexpired, present in secret form and unlockable. Revocation
// and passphrase operations bypass this gate.
func (ed *Editor) selfSigningKey(protector *protect.Protector) (*packet.PublicKey, *packet.PrivateKey, error) {
	c := ed.skm.Certificate()
	keyID := c.KeyID()
	now := ed.now()
	if policy.Revoked(c, keyID, now) {
		return nil, nil, pgperrors.RevokedKeyError{KeyID: keyID}
	}
	if exp, ok := policy.ExpirationFor(c, keyID, policy.UsageCertify); ok && !now.Before(exp) {
		return nil, nil, pgperrors.ExpiredKeyError{KeyID: keyID, Expired: exp}
	}
	if bk, ok := c.Key(keyID); ok && bk.Binding != nil && bk.Binding.SigExpired(now) {
		return nil, nil, pgperrors.ExpiredKeyError{KeyID: keyID}
	}
	return ed.unlockedPrimary(protector)
}

// unlockedPrimary resolves and unlocks the primary secret key without the
// revocation and expiry gate.
func (ed *Editor) unlockedPrimary(protector *protect.Protector) (*packet.PublicKey, *packet.PrivateKey, error) {
	keyID := ed.skm.KeyID()
	priv, ok := ed.skm.SecretKey(keyID)
	if !ok || priv.Dummy() {
		return nil, nil, pgperrors.MissingSecretKeyError{KeyID: keyID}
	}
	if protector == nil {
		protector = protect.Unprotected()
	}
	unlocked, err := protector.Unlock(priv)
	if err != nil {
		return nil, nil, err
	}
	return ed.skm.PrimaryKey(), unlocked, nil
}

// primarySelfSignature returns the current primary self-certification and
// the user id carrying it.
func (ed *Editor) primarySelfSignature() (string, *packet.Signature, error) {
	c := ed.skm.Certificate()
	ident := c.PrimaryIdentity()
	if ident == nil || ident.SelfSignature == nil {
		return "", nil, pgperrors.NotFoundError("ring carries no self-certified user id")
	}
	return ident.Name, ident.SelfSignature, nil
}

// AddUserID appends a new self-certified user id to the ring.
func (ed *Editor) AddUserID(uid string, protector *protect.Protector) (*Editor, error) {
	return ed.AddUserIDWithSubpackets(uid, protector, nil)
}

// AddUserIDWithSubpackets appends a new self-certified user id, running fn
// over the prepared self-certification before it is signed.
func (ed *Editor) AddUserIDWithSubpackets(uid string, protector *protect.Protector, fn func(*packet.Signature)) (*Editor, error) {
	pub, priv, err := ed.selfSigningKey(protector)
	if err != nil {
		return nil, err
	}
	_, selfSig, err := ed.primarySelfSignature()
	if err != nil {
		return nil, err
	}
	sig, err := sign.SelfCertification(uid, false, pub, priv,
		sign.SignatureFlags(selfSig), selfSig.KeyLifetimeSecs, fn, ed.Config)
	if err != nil {
		return nil, err
	}
	skm, err := ed.skm.WithUserID(uid, sig)
	if err != nil {
		return nil, err
	}
	return ed.next(skm), nil
}

// AddSubkey generates a subkey from the spec and binds it to the ring,
// mirroring the generator's binding construction including the embedded
// primary-key binding for signing-capable subkeys.
func (ed *Editor) AddSubkey(spec key.Spec, protector *protect.Protector) (*Editor, error) {
	return ed.AddSubkeyWithPassphrase(spec, protector, nil)
}

// AddSubkeyWithPassphrase generates and binds a subkey, protecting its
// secret material under its own passphrase.
func (ed *Editor) AddSubkeyWithPassphrase(spec key.Spec, protector *protect.Protector, subPass *protect.Passphrase) (*Editor, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	pub, priv, err := ed.selfSigningKey(protector)
	if err != nil {
		return nil, err
	}
	subPriv, err := keygen.NewKeyPair(spec.Algorithm, ed.now(), ed.Config)
	if err != nil {
		return nil, err
	}
	subPriv.IsSubkey = true

	var lifetime *uint32
	var fn sign.Callback
	if spec.Inherit {
		if _, selfSig, err := ed.primarySelfSignature(); err == nil {
			lifetime = selfSig.KeyLifetimeSecs
		}
	} else {
		fn = spec.Subpackets
	}
	binding, err := sign.SubkeyBinding(pub, priv, &subPriv.PublicKey, subPriv, spec.Flags, lifetime, fn, ed.Config)
	if err != nil {
		return nil, err
	}
	if !subPass.Empty() {
		if err := protect.EncryptKey(subPriv, subPass, protect.SecureDefaults()); err != nil {
			return nil, err
		}
	}
	return ed.next(ed.skm.WithSubkey(subPriv, binding)), nil
}

// AddBoundSubkey binds a pre-built secret key to the ring with the given
// capability flags. When flags require an embedded primary-key binding, the
// subkey itself is unlocked through subProtector to issue it.
func (ed *Editor) AddBoundSubkey(subPriv *packet.PrivateKey, flags key.Flags, fn func(*packet.Signature), protector, subProtector *protect.Protector) (*Editor, error) {
	if subPriv == nil {
		return nil, pgperrors.PreconditionError("no subkey material supplied")
	}
	if flags == 0 {
		return nil, pgperrors.PreconditionError("subkey binding carries no capability flags")
	}
	pub, priv, err := ed.selfSigningKey(protector)
	if err != nil {
		return nil, err
	}
	signingSubkey := subPriv
	if flags.HasAny(key.FlagSign | key.FlagCertify) {
		if subProtector == nil {
			subProtector = protect.Unprotected()
		}
		signingSubkey, err = subProtector.Unlock(subPriv)
		if err != nil {
			return nil, err
		}
	}
	bound := *signingSubkey
	bound.IsSubkey = true
	binding, err := sign.SubkeyBinding(pub, priv, &bound.PublicKey, &bound, flags, nil, fn, ed.Config)
	if err != nil {
		return nil, err
	}
	keep := *subPriv
	keep.IsSubkey = true
	return ed.next(ed.skm.WithSubkey(&keep, binding)), nil
}

// SetExpirationDate reissues the primary self-certification with a new key
// lifetime; nil clears the expiration.
func (ed *Editor) SetExpirationDate(expiration *time.Time, protector *protect.Protector) (*Editor, error) {
	pub, priv, err := ed.selfSigningKey(protector)
	if err != nil {
		return nil, err
	}
	uid, selfSig, err := ed.primarySelfSignature()
	if err != nil {
		return nil, err
	}
	var lifetime *uint32
	if expiration != nil {
		secs, err := sign.KeyLifetime(pub.CreationTime, *expiration)
		if err != nil {
			return nil, err
		}
		lifetime = &secs
	}
	primaryUID := selfSig.IsPrimaryId != nil && *selfSig.IsPrimaryId
	sig, err := sign.SelfCertification(uid, primaryUID, pub, priv,
		sign.SignatureFlags(selfSig), lifetime, nil, ed.Config)
	if err != nil {
		return nil, err
	}
	skm, err := ed.skm.WithReplacedSelfCertification(uid, sig)
	if err != nil {
		return nil, err
	}
	return ed.next(skm), nil
}

// SetSubkeyExpirationDate reissues one subkey's binding signature with a new
// key lifetime, carrying any embedded primary-key binding forward; nil
// clears the expiration.
func (ed *Editor) SetSubkeyExpirationDate(fingerprint string, expiration *time.Time, protector *protect.Protector) (*Editor, error) {
	pub, priv, err := ed.selfSigningKey(protector)
	if err != nil {
		return nil, err
	}
	bk, ok := ed.skm.Certificate().KeyByFingerprint(fingerprint)
	if !ok || bk.Primary {
		return nil, pgperrors.NotFoundError("no subkey with fingerprint " + cert.NormalizeFingerprint(fingerprint))
	}
	var lifetime *uint32
	if expiration != nil {
		secs, err := sign.KeyLifetime(bk.PublicKey.CreationTime, *expiration)
		if err != nil {
			return nil, err
		}
		lifetime = &secs
	}
	sig := sign.New(pub, packet.SigTypeSubkeyBinding, ed.Config)
	sign.ApplyFlags(sig, sign.SignatureFlags(bk.Binding))
	sig.KeyLifetimeSecs = lifetime
	// The embedded cross-signature covers (primary, subkey) only, so the
	// old one stays valid under the reissued binding.
	sig.EmbeddedSignature = bk.Binding.EmbeddedSignature
	if err := sig.SignKey(bk.PublicKey, priv, ed.Config); err != nil {
		return nil, err
	}
	skm, err := ed.skm.WithReplacedBinding(bk.PublicKey.KeyId, sig)
	if err != nil {
		return nil, err
	}
	return ed.next(skm), nil
}
