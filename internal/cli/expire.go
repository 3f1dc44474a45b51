package cli

import (
	"fmt"
	"time"
)

// ExpireOptions holds the arguments of the expire command.
type ExpireOptions struct {
	KeyFile     string
	At          string
	Never       bool
	Fingerprint string
	Output      string
	SaveName    string
}

// Expire sets or clears the expiration date of the primary key, or of one
// subkey when a fingerprint is given.
func (c *CLI) Expire(opts ExpireOptions) error {
	if opts.Never == (opts.At != "") {
		return NewError("exactly one of --at DATE or --never is required", ExitValidationError)
	}
	var expiration *time.Time
	if opts.At != "" {
		t, err := parseDate(opts.At)
		if err != nil {
			return err
		}
		expiration = &t
	}

	skm, err := c.loadSecretRing(opts.KeyFile)
	if err != nil {
		return err
	}
	protector, err := c.protectorFor(skm, fmt.Sprintf("Enter passphrase for key %s", skm.Fingerprint()))
	if err != nil {
		return err
	}
	defer protector.Clear()

	ed := c.editorFor(skm)
	if opts.Fingerprint != "" {
		ed, err = ed.SetSubkeyExpirationDate(opts.Fingerprint, expiration, protector)
	} else {
		ed, err = ed.SetExpirationDate(expiration, protector)
	}
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}
