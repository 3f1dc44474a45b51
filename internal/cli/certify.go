package cli

import (
	"fmt"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/certify"
)

// CertifyOptions holds the arguments of the certify command.
type CertifyOptions struct {
	CertFile string
	UserID   string
	Type     string
	KeyFile  string
	Output   string
}

// Certify issues a third-party certification over one user id of a
// certificate and writes the certified copy.
func (c *CLI) Certify(opts CertifyOptions) error {
	if opts.UserID == "" {
		return NewError("--uid is required", ExitValidationError)
	}
	target, err := c.loadCertificate(opts.CertFile)
	if err != nil {
		return err
	}
	signer, err := c.loadSecretRing(opts.KeyFile)
	if err != nil {
		return err
	}

	ctype := certify.Generic
	if opts.Type != "" {
		ctype, err = certify.ParseCertificationType(opts.Type)
		if err != nil {
			return WrapError(err)
		}
	}

	protector, err := c.protectorFor(signer, fmt.Sprintf("Enter passphrase for key %s", signer.Fingerprint()))
	if err != nil {
		return err
	}
	defer protector.Clear()

	req := certify.UserID(opts.UserID, target).OfType(ctype)
	req.Policy = &c.policy
	req.Config = c.policy.Config()

	s, err := req.WithKey(signer, protector)
	if err != nil {
		return WrapError(err)
	}
	result, err := s.Build()
	if err != nil {
		return WrapError(err)
	}

	armored, err := result.Certificate.Armor()
	if err != nil {
		return WrapError(err)
	}
	if err := c.writeOutput(opts.Output, armored); err != nil {
		return err
	}
	c.output.Successf("Certified %q on %s (%s)", opts.UserID, result.Certificate.Fingerprint(), ctype)
	return nil
}

// DelegateOptions holds the arguments of the delegate command.
type DelegateOptions struct {
	CertFile string
	KeyFile  string
	Output   string

	// HasTrust distinguishes an absent trust signature from a zero-depth,
	// zero-amount one.
	HasTrust bool
	Depth    uint8
	Amount   uint8
}

// Delegate issues a direct-key delegation signature over a certificate and
// writes the delegated copy.
func (c *CLI) Delegate(opts DelegateOptions) error {
	target, err := c.loadCertificate(opts.CertFile)
	if err != nil {
		return err
	}
	signer, err := c.loadSecretRing(opts.KeyFile)
	if err != nil {
		return err
	}

	var trust *certify.Trustworthiness
	if opts.HasTrust {
		trust = &certify.Trustworthiness{Depth: opts.Depth, Amount: opts.Amount}
	}

	protector, err := c.protectorFor(signer, fmt.Sprintf("Enter passphrase for key %s", signer.Fingerprint()))
	if err != nil {
		return err
	}
	defer protector.Clear()

	req := certify.Delegate(target, trust)
	req.Policy = &c.policy
	req.Config = c.policy.Config()

	s, err := req.WithKey(signer, protector)
	if err != nil {
		return WrapError(err)
	}
	result, err := s.Build()
	if err != nil {
		return WrapError(err)
	}

	armored, err := result.Certificate.Armor()
	if err != nil {
		return WrapError(err)
	}
	if err := c.writeOutput(opts.Output, armored); err != nil {
		return err
	}
	c.output.Successf("Delegated to %s", result.Certificate.Fingerprint())
	return nil
}
