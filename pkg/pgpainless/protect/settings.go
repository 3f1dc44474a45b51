package protect

import (
	"crypto"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/go-crypto/openpgp/s2k"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Settings selects the symmetric algorithm and string-to-key parameters used
// to encrypt secret key material.
type Settings struct {
	Cipher   packet.CipherFunction
	Hash     crypto.Hash
	S2KMode  s2k.Mode
	S2KCount int

	// Argon2 parameters, used only when S2KMode is s2k.Argon2S2K. Nil picks
	// the library defaults.
	Argon2 *s2k.Argon2Config
}

// SecureDefaults returns AES-256 with iterated-salted SHA-256 at the maximum
// encodable iteration count.
func SecureDefaults() Settings {
	return Settings{
		Cipher:   packet.CipherAES256,
		Hash:     crypto.SHA256,
		S2KMode:  s2k.IteratedSaltedS2K,
		S2KCount: 65011712,
	}
}

// Argon2Defaults returns AES-256 with the memory-hard Argon2 KDF.
func Argon2Defaults() Settings {
	return Settings{
		Cipher:  packet.CipherAES256,
		S2KMode: s2k.Argon2S2K,
	}
}

// Config expresses the settings as a packet config usable by the secret-key
// encryption routines.
func (s Settings) Config() *packet.Config {
	cfg := &packet.Config{
		DefaultCipher: s.Cipher,
		S2KConfig: &s2k.Config{
			S2KMode:  s.S2KMode,
			Hash:     s.Hash,
			S2KCount: s.S2KCount,
		},
	}
	if s.S2KMode == s2k.Argon2S2K {
		cfg.S2KConfig.Argon2Config = s.Argon2
	}
	return cfg
}

// EncryptKey protects a single private key packet in place under pass.
// Empty or nil passphrases leave the key unencrypted.
func EncryptKey(priv *packet.PrivateKey, pass *Passphrase, s Settings) error {
	if pass.Empty() {
		return nil
	}
	b, err := pass.Bytes()
	if err != nil {
		return err
	}
	if err := priv.EncryptWithConfig(b, s.Config()); err != nil {
		return pgperrors.PassphraseError("could not encrypt secret key: " + err.Error())
	}
	return nil
}

// EncryptKeys protects every listed private key packet under one passphrase.
// The string-to-key layer salts each key independently.
func EncryptKeys(privs []*packet.PrivateKey, pass *Passphrase, s Settings) error {
	if pass.Empty() {
		return nil
	}
	b, err := pass.Bytes()
	if err != nil {
		return err
	}
	if err := packet.EncryptPrivateKeys(privs, b, s.Config()); err != nil {
		return pgperrors.PassphraseError("could not encrypt secret keys: " + err.Error())
	}
	return nil
}
