package cli

import (
	"fmt"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/interop"
)

// SignOptions holds the arguments of the sign command.
type SignOptions struct {
	KeyFile  string
	DataFile string
	Output   string
}

// Sign issues an armored detached signature over a data file; "-" and the
// empty path read stdin.
func (c *CLI) Sign(opts SignOptions) error {
	skm, err := c.loadSecretRing(opts.KeyFile)
	if err != nil {
		return err
	}
	dataFile := opts.DataFile
	if dataFile == "" {
		dataFile = "-"
	}
	data, err := c.readInput(dataFile)
	if err != nil {
		return err
	}
	protector, err := c.protectorFor(skm, fmt.Sprintf("Enter passphrase for key %s", skm.Fingerprint()))
	if err != nil {
		return err
	}
	defer protector.Clear()

	armored, err := interop.SignDetached(skm, data, protector, c.policy.Config())
	if err != nil {
		return WrapError(err)
	}
	return c.writeOutput(opts.Output, armored)
}

// VerifyOptions holds the arguments of the verify command.
type VerifyOptions struct {
	CertFile      string
	SignatureFile string
	DataFile      string
}

// Verify checks an armored detached signature against a certificate. A
// signature that does not verify is reported and exits non-zero.
func (c *CLI) Verify(opts VerifyOptions) error {
	crt, err := c.loadCertificate(opts.CertFile)
	if err != nil {
		return err
	}
	if opts.SignatureFile == "" {
		return NewError("--signature is required", ExitValidationError)
	}
	sigData, err := c.readInput(opts.SignatureFile)
	if err != nil {
		return err
	}
	dataFile := opts.DataFile
	if dataFile == "" {
		dataFile = "-"
	}
	data, err := c.readInput(dataFile)
	if err != nil {
		return err
	}

	meta, err := interop.VerifyDetached(crt, data, string(sigData))
	if err != nil {
		return WrapError(err)
	}
	if !meta.Verified {
		return NewError(fmt.Sprintf("signature did not verify against %s", crt.Fingerprint()), ExitValidationError)
	}
	if meta.SignedByKeyID != "" {
		c.output.Successf("Good signature by key %s, made %s", meta.SignedByKeyID, meta.SignedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	} else {
		c.output.Successf("Good signature, made %s", meta.SignedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
