package cert

import (
	"fmt"
	"slices"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// SecretKeyMaterial is the private counterpart of a Certificate: the same
// entity carrying a secret key packet for every public key. Like the
// Certificate it is immutable; every With* method returns a new value.
type SecretKeyMaterial struct {
	e    *openpgp.Entity
	uids []string
}

// NewSecretKeyMaterial wraps a secret entity with an explicit user-id order.
func NewSecretKeyMaterial(e *openpgp.Entity, uids []string) *SecretKeyMaterial {
	return &SecretKeyMaterial{e: e, uids: slices.Clone(uids)}
}

// FromSecretEntity wraps a parsed secret entity, deriving the user-id order
// the same way FromEntity does.
func FromSecretEntity(e *openpgp.Entity) *SecretKeyMaterial {
	return &SecretKeyMaterial{e: e, uids: deriveUserIDOrder(e)}
}

// Entity exposes the underlying entity. Callers must treat it as read-only.
func (s *SecretKeyMaterial) Entity() *openpgp.Entity {
	return s.e
}

// Certificate derives the public view: shared public key and signature
// packets, no private key pointers.
func (s *SecretKeyMaterial) Certificate() *Certificate {
	e := cloneEntity(s.e)
	e.PrivateKey = nil
	for i := range e.Subkeys {
		e.Subkeys[i].PrivateKey = nil
	}
	return &Certificate{e: e, uids: slices.Clone(s.uids)}
}

// PrimaryKey returns the primary public key packet.
func (s *SecretKeyMaterial) PrimaryKey() *packet.PublicKey {
	return s.e.PrimaryKey
}

// KeyID returns the primary key id.
func (s *SecretKeyMaterial) KeyID() uint64 {
	return s.e.PrimaryKey.KeyId
}

// Fingerprint returns the primary key fingerprint as uppercase hex.
func (s *SecretKeyMaterial) Fingerprint() string {
	return FormatFingerprint(s.e.PrimaryKey.Fingerprint)
}

// UserIDs returns the user ids in insertion order.
func (s *SecretKeyMaterial) UserIDs() []string {
	return slices.Clone(s.uids)
}

// SecretKey resolves a key id to its private key packet.
func (s *SecretKeyMaterial) SecretKey(keyID uint64) (*packet.PrivateKey, bool) {
	if s.e.PrimaryKey.KeyId == keyID {
		if s.e.PrivateKey == nil {
			return nil, false
		}
		return s.e.PrivateKey, true
	}
	for i := range s.e.Subkeys {
		sk := &s.e.Subkeys[i]
		if sk.PublicKey.KeyId == keyID {
			if sk.PrivateKey == nil {
				return nil, false
			}
			return sk.PrivateKey, true
		}
	}
	return nil, false
}

// Clone returns an independent copy sharing the underlying packets.
func (s *SecretKeyMaterial) Clone() *SecretKeyMaterial {
	return &SecretKeyMaterial{e: cloneEntity(s.e), uids: slices.Clone(s.uids)}
}

// WithUserID returns a copy with a new self-certified user id appended at
// the end of the insertion order.
func (s *SecretKeyMaterial) WithUserID(uid string, selfSig *packet.Signature) (*SecretKeyMaterial, error) {
	if _, ok := s.e.Identities[uid]; ok {
		return nil, pgperrors.PreconditionError(fmt.Sprintf("user id %q already present on the ring", uid))
	}
	e := cloneEntity(s.e)
	e.Identities[uid] = &openpgp.Identity{
		Name:          uid,
		UserId:        &packet.UserId{Id: uid},
		SelfSignature: selfSig,
		Signatures:    []*packet.Signature{selfSig},
	}
	return &SecretKeyMaterial{e: e, uids: append(slices.Clone(s.uids), uid)}, nil
}

// WithSubkey returns a copy with a new bound subkey appended.
func (s *SecretKeyMaterial) WithSubkey(priv *packet.PrivateKey, binding *packet.Signature) *SecretKeyMaterial {
	e := cloneEntity(s.e)
	e.Subkeys = append(e.Subkeys, openpgp.Subkey{
		PublicKey:  &priv.PublicKey,
		PrivateKey: priv,
		Sig:        binding,
	})
	return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}
}

// WithKeyRevocation returns a copy with a key revocation appended to the
// primary key.
func (s *SecretKeyMaterial) WithKeyRevocation(sig *packet.Signature) *SecretKeyMaterial {
	e := cloneEntity(s.e)
	e.Revocations = append(e.Revocations, sig)
	return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}
}

// WithSubkeyRevocation returns a copy with a revocation appended to the
// subkey identified by keyID.
func (s *SecretKeyMaterial) WithSubkeyRevocation(keyID uint64, sig *packet.Signature) (*SecretKeyMaterial, error) {
	e := cloneEntity(s.e)
	for i := range e.Subkeys {
		if e.Subkeys[i].PublicKey.KeyId == keyID {
			e.Subkeys[i].Revocations = append(e.Subkeys[i].Revocations, sig)
			return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}, nil
		}
	}
	return nil, pgperrors.NotFoundError(fmt.Sprintf("no subkey %016X on ring %s", keyID, s.Fingerprint()))
}

// WithUserIDRevocation returns a copy with a certification revocation
// appended to the given user id.
func (s *SecretKeyMaterial) WithUserIDRevocation(uid string, sig *packet.Signature) (*SecretKeyMaterial, error) {
	if _, ok := s.e.Identities[uid]; !ok {
		return nil, pgperrors.NotFoundError(fmt.Sprintf("user id %q is not present on ring %s", uid, s.Fingerprint()))
	}
	e := cloneEntity(s.e)
	ident := e.Identities[uid]
	ident.Revocations = append(ident.Revocations, sig)
	ident.Signatures = append(ident.Signatures, sig)
	return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}, nil
}

// WithReplacedSelfCertification returns a copy in which a reissued
// self-certification supersedes the current one for the given user id. The
// old signature stays on the identity's signature list; newest wins.
func (s *SecretKeyMaterial) WithReplacedSelfCertification(uid string, sig *packet.Signature) (*SecretKeyMaterial, error) {
	if _, ok := s.e.Identities[uid]; !ok {
		return nil, pgperrors.NotFoundError(fmt.Sprintf("user id %q is not present on ring %s", uid, s.Fingerprint()))
	}
	e := cloneEntity(s.e)
	ident := e.Identities[uid]
	ident.Signatures = append(ident.Signatures, sig)
	ident.SelfSignature = sig
	return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}, nil
}

// WithReplacedBinding returns a copy in which a reissued binding signature
// replaces the given subkey's current binding.
func (s *SecretKeyMaterial) WithReplacedBinding(keyID uint64, sig *packet.Signature) (*SecretKeyMaterial, error) {
	e := cloneEntity(s.e)
	for i := range e.Subkeys {
		if e.Subkeys[i].PublicKey.KeyId == keyID {
			e.Subkeys[i].Sig = sig
			return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}, nil
		}
	}
	return nil, pgperrors.NotFoundError(fmt.Sprintf("no subkey %016X on ring %s", keyID, s.Fingerprint()))
}

// WithPrivateKeys returns a copy in which the listed private key packets
// replace the current ones, keyed by key id. The matching public key
// pointers follow the replacement so the pair stays consistent.
func (s *SecretKeyMaterial) WithPrivateKeys(replacements map[uint64]*packet.PrivateKey) *SecretKeyMaterial {
	e := cloneEntity(s.e)
	if repl, ok := replacements[e.PrimaryKey.KeyId]; ok {
		e.PrivateKey = repl
		e.PrimaryKey = &repl.PublicKey
	}
	for i := range e.Subkeys {
		if repl, ok := replacements[e.Subkeys[i].PublicKey.KeyId]; ok {
			e.Subkeys[i].PrivateKey = repl
			e.Subkeys[i].PublicKey = &repl.PublicKey
		}
	}
	return &SecretKeyMaterial{e: e, uids: slices.Clone(s.uids)}
}
