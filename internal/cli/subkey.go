package cli

import (
	"fmt"
)

// SubkeyOptions holds the arguments of the subkey subcommands.
type SubkeyOptions struct {
	KeyFile     string
	Spec        string
	Fingerprint string
	Reason      string
	Message     string
	Output      string
	SaveName    string
}

// SubkeyAdd generates a new subkey and binds it to the ring.
func (c *CLI) SubkeyAdd(opts SubkeyOptions) error {
	if opts.Spec == "" {
		return NewError("--spec is required (e.g. sign:ED25519)", ExitValidationError)
	}
	spec, err := parseSubkeySpec(opts.Spec)
	if err != nil {
		return err
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

	ed, err := c.editorFor(skm).AddSubkey(spec, protector)
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}

// SubkeyRevoke revokes one subkey's binding, addressed by fingerprint.
func (c *CLI) SubkeyRevoke(opts SubkeyOptions) error {
	if opts.Fingerprint == "" {
		return NewError("--fingerprint is required", ExitValidationError)
	}
	skm, err := c.loadSecretRing(opts.KeyFile)
	if err != nil {
		return err
	}
	attrs, err := c.revocationAttributes(opts.Reason, opts.Message)
	if err != nil {
		return err
	}
	protector, err := c.protectorFor(skm, fmt.Sprintf("Enter passphrase for key %s", skm.Fingerprint()))
	if err != nil {
		return err
	}
	defer protector.Clear()

	ed, err := c.editorFor(skm).RevokeSubkeyByFingerprint(opts.Fingerprint, protector, attrs)
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}
