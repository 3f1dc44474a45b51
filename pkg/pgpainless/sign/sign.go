// Package sign builds the signature packets the generator, certification
// engine and key-ring editor issue: self-certifications, subkey bindings with
// embedded primary-key bindings, revocations and direct-key signatures.
package sign

import (
	"crypto"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
)

// Callback mutates a prepared signature's subpackets before it is signed.
type Callback func(*packet.Signature)

// New returns an unsigned signature packet of the given type, carrying the
// issuer, creation time, hash and notation defaults the config dictates.
func New(issuer *packet.PublicKey, typ packet.SignatureType, cfg *packet.Config) *packet.Signature {
	sig := &packet.Signature{
		Version:           issuer.Version,
		SigType:           typ,
		PubKeyAlgo:        issuer.PubKeyAlgo,
		Hash:              cfg.Hash(),
		CreationTime:      cfg.Now(),
		IssuerKeyId:       &issuer.KeyId,
		IssuerFingerprint: issuer.Fingerprint,
		Notations:         cfg.Notations(),
	}
	if lifetime := cfg.SigLifetime(); lifetime != 0 {
		sig.SigLifetimeSecs = &lifetime
	}
	return sig
}

// KeyLifetime converts an absolute expiration date into the relative
// seconds-from-creation value signatures carry on the wire.
func KeyLifetime(creation, expiry time.Time) (uint32, error) {
	d := expiry.Sub(creation)
	if d <= 0 {
		return 0, pgperrors.PreconditionError("expiration date is not after the key creation time")
	}
	return uint32(d / time.Second), nil
}

// ApplyFlags sets the key-flags subpacket.
func ApplyFlags(sig *packet.Signature, flags key.Flags) {
	sig.FlagsValid = true
	sig.FlagCertify = flags.Has(key.FlagCertify)
	sig.FlagSign = flags.Has(key.FlagSign)
	sig.FlagEncryptCommunications = flags.Has(key.FlagEncryptCommunications)
	sig.FlagEncryptStorage = flags.Has(key.FlagEncryptStorage)
	sig.FlagSplitKey = flags.Has(key.FlagSplitKey)
	sig.FlagAuthenticate = flags.Has(key.FlagAuthenticate)
	sig.FlagGroupKey = flags.Has(key.FlagGroupKey)
}

// SignatureFlags reads the key-flags subpacket back out of a signature.
func SignatureFlags(sig *packet.Signature) key.Flags {
	if sig == nil || !sig.FlagsValid {
		return 0
	}
	var f key.Flags
	if sig.FlagCertify {
		f |= key.FlagCertify
	}
	if sig.FlagSign {
		f |= key.FlagSign
	}
	if sig.FlagEncryptCommunications {
		f |= key.FlagEncryptCommunications
	}
	if sig.FlagEncryptStorage {
		f |= key.FlagEncryptStorage
	}
	if sig.FlagSplitKey {
		f |= key.FlagSplitKey
	}
	if sig.FlagAuthenticate {
		f |= key.FlagAuthenticate
	}
	if sig.FlagGroupKey {
		f |= key.FlagGroupKey
	}
	return f
}

// ApplyPreferences sets the algorithm-preference and feature subpackets
// carried by self-certifications.
func ApplyPreferences(sig *packet.Signature) {
	sig.PreferredSymmetric = []uint8{
		uint8(packet.CipherAES256),
		uint8(packet.CipherAES192),
		uint8(packet.CipherAES128),
	}
	sig.PreferredHash = []uint8{
		hashID(crypto.SHA256),
		hashID(crypto.SHA384),
		hashID(crypto.SHA512),
	}
	sig.PreferredCompression = []uint8{
		uint8(packet.CompressionNone),
		uint8(packet.CompressionZLIB),
		uint8(packet.CompressionZIP),
	}
	sig.SEIPDv1 = true
}

func hashID(h crypto.Hash) uint8 {
	if id, ok := openpgp.HashToHashId(h); ok {
		return id
	}
	return hashIDSHA256
}

// RFC 4880 section 9.4 id for SHA-256, the fallback preference.
const hashIDSHA256 = 8

// SelfCertification issues a self-certification over uid, bound to the
// primary key. primaryUID marks the user id as the primary one.
func SelfCertification(uid string, primaryUID bool, pk *packet.PublicKey, priv *packet.PrivateKey, flags key.Flags, keyLifetime *uint32, fn Callback, cfg *packet.Config) (*packet.Signature, error) {
	sig := New(pk, packet.SigTypePositiveCert, cfg)
	ApplyFlags(sig, flags)
	ApplyPreferences(sig)
	if primaryUID {
		isPrimary := true
		sig.IsPrimaryId = &isPrimary
	}
	sig.KeyLifetimeSecs = keyLifetime
	if fn != nil {
		fn(sig)
	}
	if err := sig.SignUserId(uid, pk, priv, cfg); err != nil {
		return nil, err
	}
	return sig, nil
}

// SubkeyBinding issues a binding signature from the primary key over the
// subkey. Signing- or certification-capable subkeys additionally get a
// primary-key binding signature from the subkey embedded into the binding,
// which requires the subkey's unlocked private key.
func SubkeyBinding(primaryPub *packet.PublicKey, primaryPriv *packet.PrivateKey, subPub *packet.PublicKey, subPriv *packet.PrivateKey, flags key.Flags, keyLifetime *uint32, fn Callback, cfg *packet.Config) (*packet.Signature, error) {
	sig := New(primaryPub, packet.SigTypeSubkeyBinding, cfg)
	ApplyFlags(sig, flags)
	sig.KeyLifetimeSecs = keyLifetime
	if flags.HasAny(key.FlagSign | key.FlagCertify) {
		if subPriv == nil || subPriv.Dummy() {
			return nil, pgperrors.MissingSecretKeyError{KeyID: subPub.KeyId}
		}
		if subPriv.Encrypted {
			return nil, pgperrors.PreconditionError("signing-capable subkey must be unlocked to issue its primary-key binding")
		}
		cross := New(subPub, packet.SigTypePrimaryKeyBinding, cfg)
		if err := cross.CrossSignKey(subPub, primaryPub, subPriv, cfg); err != nil {
			return nil, err
		}
		sig.EmbeddedSignature = cross
	}
	if fn != nil {
		fn(sig)
	}
	if err := sig.SignKey(subPub, primaryPriv, cfg); err != nil {
		return nil, err
	}
	return sig, nil
}

// KeyRevocation issues a revocation over the primary key. A nil reason omits
// the reason subpacket.
func KeyRevocation(pk *packet.PublicKey, priv *packet.PrivateKey, reason *packet.ReasonForRevocation, text string, fn Callback, cfg *packet.Config) (*packet.Signature, error) {
	sig := New(pk, packet.SigTypeKeyRevocation, cfg)
	if reason != nil {
		sig.RevocationReason = reason
		sig.RevocationReasonText = text
	}
	if fn != nil {
		fn(sig)
	}
	if err := sig.RevokeKey(pk, priv, cfg); err != nil {
		return nil, err
	}
	return sig, nil
}

// SubkeyRevocation issues a revocation of one subkey's binding, signed by the
// primary key.
func SubkeyRevocation(primaryPub *packet.PublicKey, primaryPriv *packet.PrivateKey, subPub *packet.PublicKey, reason *packet.ReasonForRevocation, text string, fn Callback, cfg *packet.Config) (*packet.Signature, error) {
	sig := New(primaryPub, packet.SigTypeSubkeyRevocation, cfg)
	if reason != nil {
		sig.RevocationReason = reason
		sig.RevocationReasonText = text
	}
	if fn != nil {
		fn(sig)
	}
	if err := sig.RevokeSubkey(subPub, primaryPriv, cfg); err != nil {
		return nil, err
	}
	return sig, nil
}

// CertificationRevocation issues a revocation of one user id's
// certification, signed by the primary key.
func CertificationRevocation(uid string, pk *packet.PublicKey, priv *packet.PrivateKey, reason *packet.ReasonForRevocation, text string, fn Callback, cfg *packet.Config) (*packet.Signature, error) {
	sig := New(pk, packet.SigTypeCertificationRevocation, cfg)
	if reason != nil {
		sig.RevocationReason = reason
		sig.RevocationReasonText = text
	}
	if fn != nil {
		fn(sig)
	}
	if err := sig.SignUserId(uid, pk, priv, cfg); err != nil {
		return nil, err
	}
	return sig, nil
}

// DirectKey issues a direct-key signature from the issuer over the target
// primary key. The callback sets delegation subpackets such as trust depth
// and amount.
func DirectKey(target *packet.PublicKey, issuerPub *packet.PublicKey, issuerPriv *packet.PrivateKey, fn Callback, cfg *packet.Config) (*packet.Signature, error) {
	sig := New(issuerPub, packet.SigTypeDirectSignature, cfg)
	if fn != nil {
		fn(sig)
	}
	if err := sig.SignDirectKeyBinding(target, issuerPriv, cfg); err != nil {
		return nil, err
	}
	return sig, nil
}
