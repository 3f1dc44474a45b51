// Package keygen generates fresh OpenPGP key material: a certification-
// capable primary key with self-certified user ids, plus optional subkeys
// bound by the primary, each carrying the signatures the protocol requires.
package keygen

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/ed25519"
	"github.com/ProtonMail/go-crypto/openpgp/ed448"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/go-crypto/openpgp/x25519"
	"github.com/ProtonMail/go-crypto/openpgp/x448"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// Builder assembles a key generation request. Specs and user ids are
// validated as they are assigned, so a misconfigured request fails before
// any key material exists.
type Builder struct {
	// Config injects the clock and random source; nil uses the substrate
	// defaults.
	Config *packet.Config

	primary *key.Spec
	subkeys []key.Spec
	userIDs []string
	pass    *protect.Passphrase
	expiry  *time.Time
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Primary assigns the primary key spec. The spec must declare the certify
// flag and use a certification-capable algorithm.
func (b *Builder) Primary(spec key.Spec) error {
	if err := spec.ValidateForPrimary(); err != nil {
		return err
	}
	b.primary = &spec
	return nil
}

// AddSubkey appends a subkey spec.
func (b *Builder) AddSubkey(spec key.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	b.subkeys = append(b.subkeys, spec)
	return nil
}

// AddUserID appends a user id. Insertion order is preserved; the first user
// id becomes the primary one.
func (b *Builder) AddUserID(uid string) error {
	trimmed, err := validateUserID(uid)
	if err != nil {
		return err
	}
	for _, existing := range b.userIDs {
		if existing == trimmed {
			return pgperrors.PreconditionError(fmt.Sprintf("duplicate user id %q", trimmed))
		}
	}
	b.userIDs = append(b.userIDs, trimmed)
	return nil
}

// Passphrase sets the passphrase protecting every generated secret key. It
// is cleared on every exit path of Generate.
func (b *Builder) Passphrase(p *protect.Passphrase) {
	b.pass = p
}

// ExpiresAt sets the key expiration date, stored on the wire as seconds
// from creation.
func (b *Builder) ExpiresAt(t time.Time) {
	b.expiry = &t
}

// Generate produces the secret key material described by the builder.
func (b *Builder) Generate() (*cert.SecretKeyMaterial, error) {
	defer b.pass.Clear()

	cfg := b.Config
	if b.primary == nil {
		return nil, pgperrors.PreconditionError("no primary key spec assigned")
	}
	if len(b.userIDs) == 0 {
		return nil, pgperrors.PreconditionError("at least one user id is required")
	}
	creation := cfg.Now()
	var keyLifetime *uint32
	if b.expiry != nil {
		secs, err := sign.KeyLifetime(creation, *b.expiry)
		if err != nil {
			return nil, err
		}
		keyLifetime = &secs
	}

	primaryPriv, err := NewKeyPair(b.primary.Algorithm, creation, cfg)
	if err != nil {
		return nil, err
	}
	primaryPub := &primaryPriv.PublicKey

	e := &openpgp.Entity{
		PrimaryKey: primaryPub,
		PrivateKey: primaryPriv,
		Identities: make(map[string]*openpgp.Identity, len(b.userIDs)),
	}

	for i, uid := range b.userIDs {
		selfSig, err := sign.SelfCertification(uid, i == 0, primaryPub, primaryPriv,
			b.primary.Flags, keyLifetime, b.primary.Subpackets, cfg)
		if err != nil {
			return nil, err
		}
		e.Identities[uid] = &openpgp.Identity{
			Name:          uid,
			UserId:        &packet.UserId{Id: uid},
			SelfSignature: selfSig,
			Signatures:    []*packet.Signature{selfSig},
		}
	}

	for _, spec := range b.subkeys {
		subPriv, err := NewKeyPair(spec.Algorithm, creation, cfg)
		if err != nil {
			return nil, err
		}
		subPriv.IsSubkey = true
		var lifetime *uint32
		var fn sign.Callback
		if spec.Inherit {
			lifetime = keyLifetime
		} else {
			fn = spec.Subpackets
		}
		binding, err := sign.SubkeyBinding(primaryPub, primaryPriv, &subPriv.PublicKey, subPriv,
			spec.Flags, lifetime, fn, cfg)
		if err != nil {
			return nil, err
		}
		e.Subkeys = append(e.Subkeys, openpgp.Subkey{
			PublicKey:  &subPriv.PublicKey,
			PrivateKey: subPriv,
			Sig:        binding,
		})
	}

	if !b.pass.Empty() {
		privs := []*packet.PrivateKey{primaryPriv}
		for i := range e.Subkeys {
			privs = append(privs, e.Subkeys[i].PrivateKey)
		}
		if err := protect.EncryptKeys(privs, b.pass, protect.SecureDefaults()); err != nil {
			return nil, err
		}
	}

	return cert.NewSecretKeyMaterial(e, b.userIDs), nil
}

// Generate is the one-call form: primary spec, subkey specs, user ids, an
// optional passphrase and an optional expiration date.
func Generate(primary key.Spec, subkeys []key.Spec, userIDs []string, pass *protect.Passphrase, expiry *time.Time) (*cert.SecretKeyMaterial, error) {
	defer pass.Clear()

	b := New()
	if err := b.Primary(primary); err != nil {
		return nil, err
	}
	for _, spec := range subkeys {
		if err := b.AddSubkey(spec); err != nil {
			return nil, err
		}
	}
	for _, uid := range userIDs {
		if err := b.AddUserID(uid); err != nil {
			return nil, err
		}
	}
	b.Passphrase(pass)
	if expiry != nil {
		b.ExpiresAt(*expiry)
	}
	return b.Generate()
}

// NewKeyPair generates one key pair of the given algorithm as a private key
// packet with the given creation time.
func NewKeyPair(algo key.Algorithm, creation time.Time, cfg *packet.Config) (*packet.PrivateKey, error) {
	rand := cfg.Random()
	switch algo {
	case key.AlgorithmED25519:
		k, err := ed25519.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		return packet.NewEd25519PrivateKey(creation, k), nil
	case key.AlgorithmED448:
		k, err := ed448.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		return packet.NewEd448PrivateKey(creation, k), nil
	case key.AlgorithmX25519:
		k, err := x25519.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		return packet.NewX25519PrivateKey(creation, k), nil
	case key.AlgorithmX448:
		k, err := x448.GenerateKey(rand)
		if err != nil {
			return nil, err
		}
		return packet.NewX448PrivateKey(creation, k), nil
	case key.AlgorithmRSA2048, key.AlgorithmRSA3072, key.AlgorithmRSA4096:
		k, err := rsa.GenerateKey(rand, algo.Bits())
		if err != nil {
			return nil, err
		}
		return packet.NewRSAPrivateKey(creation, k), nil
	}
	return nil, pgperrors.PreconditionError(fmt.Sprintf("unsupported algorithm %q", algo))
}

func validateUserID(uid string) (string, error) {
	trimmed := strings.TrimSpace(uid)
	if trimmed == "" {
		return "", pgperrors.PreconditionError("user id must not be empty")
	}
	if !utf8.ValidString(trimmed) {
		return "", pgperrors.PreconditionError("user id must be valid UTF-8")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", pgperrors.PreconditionError("user id must not contain control characters")
		}
	}
	return trimmed, nil
}
