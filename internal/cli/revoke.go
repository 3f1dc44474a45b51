package cli

import (
	"fmt"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/editor"
)

// RevokeOptions holds the arguments of the revoke command.
type RevokeOptions struct {
	KeyFile  string
	Reason   string
	Message  string
	Detached bool
	Output   string
	SaveName string
}

// Revoke revokes the primary key of a ring, or issues a detached revocation
// certificate that leaves the ring untouched.
func (c *CLI) Revoke(opts RevokeOptions) error {
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

	ed := c.editorFor(skm)

	if opts.Detached {
		sig, err := ed.RevocationCertificate(protector, attrs)
		if err != nil {
			return WrapError(err)
		}
		armored, err := cert.ArmorSignature(sig)
		if err != nil {
			return WrapError(err)
		}
		if opts.SaveName != "" {
			if err := c.store.SaveRevocation(opts.SaveName, armored); err != nil {
				return WrapError(err)
			}
			c.output.Successf("Stored revocation certificate for %q", opts.SaveName)
			return nil
		}
		return c.writeOutput(opts.Output, armored)
	}

	ed, err = ed.Revoke(protector, attrs)
	if err != nil {
		return WrapError(err)
	}
	return c.writeRing(ed.Done(), opts.Output, opts.SaveName)
}

// revocationAttributes builds the revocation reason from command flags; no
// flags at all keeps the library's hard-revocation default.
func (c *CLI) revocationAttributes(reason, message string) (*editor.RevocationAttributes, error) {
	if reason == "" && message == "" {
		return nil, nil
	}
	attrs := &editor.RevocationAttributes{Message: message}
	if reason != "" {
		parsed, err := editor.ParseRevocationReason(reason)
		if err != nil {
			return nil, WrapError(err)
		}
		attrs.Reason = parsed
	}
	return attrs, nil
}

// editorFor opens an edit session wired to the effective policy.
func (c *CLI) editorFor(skm *cert.SecretKeyMaterial) *editor.Editor {
	ed := editor.Edit(skm)
	ed.Policy = &c.policy
	ed.Config = c.policy.Config()
	return ed
}

// writeRing writes or stores the resulting secret key material of an edit.
func (c *CLI) writeRing(skm *cert.SecretKeyMaterial, outputPath, saveName string) error {
	if saveName != "" {
		if err := c.store.Save(saveName, skm); err != nil {
			return WrapError(err)
		}
		c.output.Successf("Stored key ring %q (%s)", saveName, skm.Fingerprint())
		if outputPath == "" {
			return nil
		}
	}
	armored, err := skm.Armor()
	if err != nil {
		return WrapError(err)
	}
	return c.writeOutput(outputPath, armored)
}
