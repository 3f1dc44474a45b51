package cli

import (
	"fmt"
)

// UIDOptions holds the arguments of the uid subcommands.
type UIDOptions struct {
	KeyFile  string
	UserID   string
	Reason   string
	Message  string
	Output   string
	SaveName string
}

// UIDAdd binds a new user id to the ring's primary key.
func (c *CLI) UIDAdd(opts UIDOptions) error {
	if opts.UserID == "" {
		return NewError("--uid is required", ExitValidationError)
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

	ed, err := c.editorFor(skm).AddUserID(opts.UserID, protector)
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}

// UIDRevoke revokes one user id's self-certification.
func (c *CLI) UIDRevoke(opts UIDOptions) error {
	if opts.UserID == "" {
		return NewError("--uid is required", ExitValidationError)
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

	ed, err := c.editorFor(skm).RevokeUserID(opts.UserID, protector, attrs)
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}
