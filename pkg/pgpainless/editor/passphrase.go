package editor

import (
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
)

// ChangePassphrase starts a passphrase rotation over every secret key of
// the ring. The staged return types force callers to pick encryption
// settings before supplying the new passphrase.
func (ed *Editor) ChangePassphrase(old *protect.Passphrase) *EncryptionSettings {
	return &EncryptionSettings{ed: ed, old: old}
}

// ChangeSubkeyPassphrase starts a passphrase rotation scoped to the single
// subkey identified by keyID; the remaining keys keep their protection.
func (ed *Editor) ChangeSubkeyPassphrase(keyID uint64, old *protect.Passphrase) *EncryptionSettings {
	return &EncryptionSettings{ed: ed, old: old, scope: &keyID}
}

// EncryptionSettings is the first rotation stage: the new secret-key
// encryption settings must be chosen next.
type EncryptionSettings struct {
	ed    *Editor
	old   *protect.Passphrase
	scope *uint64
}

// WithSecureDefaultSettings selects the secure default encryption settings.
func (es *EncryptionSettings) WithSecureDefaultSettings() *PassphraseTo {
	return es.WithCustomSettings(protect.SecureDefaults())
}

// WithCustomSettings selects caller-supplied encryption settings.
func (es *EncryptionSettings) WithCustomSettings(settings protect.Settings) *PassphraseTo {
	return &PassphraseTo{es: es, settings: settings}
}

// PassphraseTo is the final rotation stage: the new passphrase, or no
// passphrase at all.
type PassphraseTo struct {
	es       *EncryptionSettings
	settings protect.Settings
}

// ToNewPassphrase re-encrypts the scoped secret key material under the new
// passphrase.
func (pt *PassphraseTo) ToNewPassphrase(newPass *protect.Passphrase) (*Editor, error) {
	return pt.apply(newPass)
}

// ToNoPassphrase leaves the scoped secret key material unencrypted.
func (pt *PassphraseTo) ToNoPassphrase() (*Editor, error) {
	return pt.apply(nil)
}

func (pt *PassphraseTo) apply(newPass *protect.Passphrase) (*Editor, error) {
	ed := pt.es.ed
	targets, err := ed.rotationTargets(pt.es.scope)
	if err != nil {
		return nil, err
	}
	oldBytes, err := pt.es.old.Bytes()
	if err != nil {
		return nil, err
	}
	replacements := make(map[uint64]*packet.PrivateKey, len(targets))
	for _, priv := range targets {
		copied := *priv
		if copied.Encrypted {
			if err := copied.Decrypt(oldBytes); err != nil {
				return nil, pgperrors.PassphraseError(fmt.Sprintf("old passphrase does not unlock key %016X", copied.KeyId))
			}
		} else if len(oldBytes) > 0 {
			return nil, pgperrors.PassphraseError(fmt.Sprintf("key %016X is not passphrase-protected", copied.KeyId))
		}
		if err := protect.EncryptKey(&copied, newPass, pt.settings); err != nil {
			return nil, err
		}
		replacements[copied.KeyId] = &copied
	}
	return ed.next(ed.skm.WithPrivateKeys(replacements)), nil
}

// rotationTargets resolves the private key packets the rotation covers.
func (ed *Editor) rotationTargets(scope *uint64) ([]*packet.PrivateKey, error) {
	if scope != nil {
		priv, ok := ed.skm.SecretKey(*scope)
		if !ok || priv.Dummy() {
			return nil, pgperrors.NotFoundError(fmt.Sprintf("no secret key %016X on ring %s", *scope, ed.skm.Fingerprint()))
		}
		return []*packet.PrivateKey{priv}, nil
	}
	e := ed.skm.Entity()
	var targets []*packet.PrivateKey
	if e.PrivateKey != nil && !e.PrivateKey.Dummy() {
		targets = append(targets, e.PrivateKey)
	}
	for i := range e.Subkeys {
		if sk := e.Subkeys[i].PrivateKey; sk != nil && !sk.Dummy() {
			targets = append(targets, sk)
		}
	}
	if len(targets) == 0 {
		return nil, pgperrors.MissingSecretKeyError{KeyID: ed.skm.KeyID()}
	}
	return targets, nil
}
