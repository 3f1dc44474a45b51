package protect

import (
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Protector resolves the passphrase guarding each secret key of a ring: a
// ring-wide default plus optional per-key overrides. A Protector never
// persists anything; it only holds the passphrases for the duration of an
// edit or signing operation.
type Protector struct {
	def    *Passphrase
	perKey map[uint64]*Passphrase
}

// Unprotected returns a protector for rings whose secret keys are stored
// without encryption.
func Unprotected() *Protector {
	return &Protector{def: EmptyPassphrase()}
}

// WithPassphrase returns a protector applying one passphrase to every key.
func WithPassphrase(p *Passphrase) *Protector {
	if p == nil {
		return Unprotected()
	}
	return &Protector{def: p}
}

// SetKeyPassphrase overrides the passphrase for a single key id.
func (pr *Protector) SetKeyPassphrase(keyID uint64, p *Passphrase) *Protector {
	if pr.perKey == nil {
		pr.perKey = make(map[uint64]*Passphrase)
	}
	pr.perKey[keyID] = p
	return pr
}

// For returns the passphrase responsible for the given key id.
func (pr *Protector) For(keyID uint64) *Passphrase {
	if pr == nil {
		return EmptyPassphrase()
	}
	if p, ok := pr.perKey[keyID]; ok {
		return p
	}
	if pr.def == nil {
		return EmptyPassphrase()
	}
	return pr.def
}

// Unlock returns a decrypted copy of priv, leaving the original packet
// untouched so material shared between ring copies stays frozen. An
// unencrypted key is returned as is.
func (pr *Protector) Unlock(priv *packet.PrivateKey) (*packet.PrivateKey, error) {
	if priv == nil || priv.Dummy() {
		return nil, pgperrors.MissingSecretKeyError{KeyID: keyID(priv)}
	}
	if !priv.Encrypted {
		return priv, nil
	}
	pass, err := pr.For(priv.KeyId).Bytes()
	if err != nil {
		return nil, err
	}
	unlocked := *priv
	if err := unlocked.Decrypt(pass); err != nil {
		return nil, pgperrors.PassphraseError("could not unlock secret key: " + err.Error())
	}
	return &unlocked, nil
}

// Clear wipes every passphrase held by the protector.
func (pr *Protector) Clear() {
	if pr == nil {
		return
	}
	pr.def.Clear()
	for _, p := range pr.perKey {
		p.Clear()
	}
}

func keyID(priv *packet.PrivateKey) uint64 {
	if priv == nil {
		return 0
	}
	return priv.KeyId
}
