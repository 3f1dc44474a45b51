// Package cert wraps the substrate entity model with immutable Certificate
// and SecretKeyMaterial values. Every mutation returns a new value built by
// structural sharing: container slices and maps are cloned, packet pointers
// are shared and never modified after construction.
//
// The substrate stores identities in a map, so user-id insertion order, which
// is significant here, is carried in an explicit slice and honored by the
// serializers in this package.
package cert

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Certificate is the public identity bundle: primary public key, subkeys,
// user ids and their signatures.
type Certificate struct {
	e    *openpgp.Entity
	uids []string
}

// FromEntity wraps a parsed or constructed entity as a Certificate. The
// user-id order is recovered as primary identity first, remaining identities
// in lexicographic order; parse functions in this package recover the true
// wire order instead.
func FromEntity(e *openpgp.Entity) *Certificate {
	return &Certificate{e: e, uids: deriveUserIDOrder(e)}
}

// NewCertificate wraps an entity with an explicit user-id order.
func NewCertificate(e *openpgp.Entity, uids []string) *Certificate {
	return &Certificate{e: e, uids: slices.Clone(uids)}
}

// Entity exposes the underlying entity. Callers must treat it as read-only.
func (c *Certificate) Entity() *openpgp.Entity {
	return c.e
}

// PrimaryKey returns the primary public key packet.
func (c *Certificate) PrimaryKey() *packet.PublicKey {
	return c.e.PrimaryKey
}

// KeyID returns the primary key id.
func (c *Certificate) KeyID() uint64 {
	return c.e.PrimaryKey.KeyId
}

// Fingerprint returns the primary key fingerprint as uppercase hex.
func (c *Certificate) Fingerprint() string {
	return FormatFingerprint(c.e.PrimaryKey.Fingerprint)
}

// UserIDs returns the user ids in insertion order.
func (c *Certificate) UserIDs() []string {
	return slices.Clone(c.uids)
}

// Identity returns the identity for a user id.
func (c *Certificate) Identity(uid string) (*openpgp.Identity, bool) {
	ident, ok := c.e.Identities[uid]
	return ident, ok
}

// PrimaryIdentity returns the identity marked primary by its
// self-certification, falling back to the first user id.
func (c *Certificate) PrimaryIdentity() *openpgp.Identity {
	return primaryIdentity(c.e, c.uids)
}

// PrimarySelfSignature returns the self-certification carrying the ring's
// key preferences and expiration, or nil when no identity is validly
// self-certified.
func (c *Certificate) PrimarySelfSignature() *packet.Signature {
	if ident := c.PrimaryIdentity(); ident != nil {
		return ident.SelfSignature
	}
	return nil
}

// Revocations returns the key revocation signatures on the primary key.
func (c *Certificate) Revocations() []*packet.Signature {
	return c.e.Revocations
}

// DirectSignatures returns the direct-key signatures attached to the primary
// key, including third-party delegations.
func (c *Certificate) DirectSignatures() []*packet.Signature {
	return c.e.Signatures
}

// BoundKey is one key of a certificate together with the signature binding
// it and the revocations targeting it.
type BoundKey struct {
	PublicKey   *packet.PublicKey
	Binding     *packet.Signature
	Revocations []*packet.Signature
	Primary     bool
}

// Key resolves a key id to its bound key. The primary key's binding is its
// primary self-certification; a subkey's binding is its most recent binding
// signature.
func (c *Certificate) Key(keyID uint64) (BoundKey, bool) {
	return lookupKey(c.e, c.uids, func(pk *packet.PublicKey) bool {
		return pk.KeyId == keyID
	})
}

// KeyByFingerprint resolves a fingerprint (case-insensitive hex, spaces
// ignored) to its bound key.
func (c *Certificate) KeyByFingerprint(fpr string) (BoundKey, bool) {
	want := NormalizeFingerprint(fpr)
	return lookupKey(c.e, c.uids, func(pk *packet.PublicKey) bool {
		return FormatFingerprint(pk.Fingerprint) == want
	})
}

// Keys returns every bound key, primary first.
func (c *Certificate) Keys() []BoundKey {
	keys := []BoundKey{primaryBoundKey(c.e, c.uids)}
	for i := range c.e.Subkeys {
		sk := &c.e.Subkeys[i]
		keys = append(keys, BoundKey{
			PublicKey:   sk.PublicKey,
			Binding:     sk.Sig,
			Revocations: sk.Revocations,
		})
	}
	return keys
}

// WithUserIDCertification returns a copy of the certificate with a
// third-party certification appended to the given user id's signatures.
func (c *Certificate) WithUserIDCertification(uid string, sig *packet.Signature) (*Certificate, error) {
	if _, ok := c.e.Identities[uid]; !ok {
		return nil, pgperrors.NotFoundError(fmt.Sprintf("user id %q is not present on certificate %s", uid, c.Fingerprint()))
	}
	e := cloneEntity(c.e)
	ident := e.Identities[uid]
	ident.Signatures = append(ident.Signatures, sig)
	return &Certificate{e: e, uids: slices.Clone(c.uids)}, nil
}

// WithDirectSignature returns a copy of the certificate with a direct-key
// signature appended to the primary key.
func (c *Certificate) WithDirectSignature(sig *packet.Signature) *Certificate {
	e := cloneEntity(c.e)
	e.Signatures = append(e.Signatures, sig)
	return &Certificate{e: e, uids: slices.Clone(c.uids)}
}

// Clone returns an independent copy sharing the underlying packets.
func (c *Certificate) Clone() *Certificate {
	return &Certificate{e: cloneEntity(c.e), uids: slices.Clone(c.uids)}
}

// CountSignatures returns the number of certification signatures attached to
// the given user id.
func (c *Certificate) CountSignatures(uid string) int {
	if ident, ok := c.e.Identities[uid]; ok {
		return len(ident.Signatures)
	}
	return 0
}

// FormatFingerprint renders a binary fingerprint as uppercase hex.
func FormatFingerprint(fpr []byte) string {
	return fmt.Sprintf("%X", fpr)
}

// NormalizeFingerprint upper-cases a textual fingerprint and strips spaces.
func NormalizeFingerprint(fpr string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(fpr), " ", ""))
}

func primaryIdentity(e *openpgp.Entity, uids []string) *openpgp.Identity {
	var fallback *openpgp.Identity
	for _, uid := range uids {
		ident, ok := e.Identities[uid]
		if !ok {
			continue
		}
		if fallback == nil {
			fallback = ident
		}
		if ident.SelfSignature != nil && ident.SelfSignature.IsPrimaryId != nil && *ident.SelfSignature.IsPrimaryId {
			return ident
		}
	}
	return fallback
}

func primaryBoundKey(e *openpgp.Entity, uids []string) BoundKey {
	bk := BoundKey{
		PublicKey:   e.PrimaryKey,
		Revocations: e.Revocations,
		Primary:     true,
	}
	if ident := primaryIdentity(e, uids); ident != nil {
		bk.Binding = ident.SelfSignature
	}
	return bk
}

func lookupKey(e *openpgp.Entity, uids []string, match func(*packet.PublicKey) bool) (BoundKey, bool) {
	if match(e.PrimaryKey) {
		return primaryBoundKey(e, uids), true
	}
	for i := range e.Subkeys {
		sk := &e.Subkeys[i]
		if match(sk.PublicKey) {
			return BoundKey{
				PublicKey:   sk.PublicKey,
				Binding:     sk.Sig,
				Revocations: sk.Revocations,
			}, true
		}
	}
	return BoundKey{}, false
}

func deriveUserIDOrder(e *openpgp.Entity) []string {
	uids := make([]string, 0, len(e.Identities))
	var primary string
	for name, ident := range e.Identities {
		if ident.SelfSignature != nil && ident.SelfSignature.IsPrimaryId != nil && *ident.SelfSignature.IsPrimaryId && primary == "" {
			primary = name
			continue
		}
		uids = append(uids, name)
	}
	slices.Sort(uids)
	if primary != "" {
		uids = append([]string{primary}, uids...)
	}
	return uids
}
