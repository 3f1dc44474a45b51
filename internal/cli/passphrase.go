package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
)

// PassphraseOptions holds the arguments of the passphrase command.
type PassphraseOptions struct {
	KeyFile  string
	ToNone   bool
	Subkey   string
	Output   string
	SaveName string
}

// Passphrase rotates the passphrase protecting a ring's secret keys, or one
// subkey's when a key id is given.
func (c *CLI) Passphrase(opts PassphraseOptions) error {
	skm, err := c.loadSecretRing(opts.KeyFile)
	if err != nil {
		return err
	}

	old := protect.EmptyPassphrase()
	if ringEncrypted(skm) {
		old, err = c.promptPassphrase(fmt.Sprintf("Enter current passphrase for key %s", skm.Fingerprint()))
		if err != nil {
			return err
		}
	}
	defer old.Clear()

	ed := c.editorFor(skm)
	stage := ed.ChangePassphrase(old)
	if opts.Subkey != "" {
		keyID, err := parseKeyID(opts.Subkey)
		if err != nil {
			return err
		}
		stage = ed.ChangeSubkeyPassphrase(keyID, old)
	}
	to := stage.WithSecureDefaultSettings()

	if opts.ToNone {
		ed, err = to.ToNoPassphrase()
	} else {
		newPass, promptErr := c.promptNewPassphrase("Enter new passphrase")
		if promptErr != nil {
			return promptErr
		}
		defer newPass.Clear()
		ed, err = to.ToNewPassphrase(newPass)
	}
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}

// parseKeyID parses a hex key id, accepting an optional 0x prefix.
func parseKeyID(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	keyID, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, NewError(fmt.Sprintf("invalid key id %q: expected hex", s), ExitValidationError)
	}
	return keyID, nil
}
