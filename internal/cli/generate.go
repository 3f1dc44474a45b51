package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keyfile"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keygen"
)

// GenerateOptions holds the arguments of the generate command.
type GenerateOptions struct {
	UserIDs      []string
	Algorithm    string
	Subkeys      []string
	Expiry       string
	NoPassphrase bool
	Output       string
	PubOutput    string
	SaveName     string
}

// Generate creates a fresh key ring and writes or stores it.
func (c *CLI) Generate(opts GenerateOptions) error {
	if len(opts.UserIDs) == 0 {
		return NewError("at least one --uid is required", ExitValidationError)
	}
	if opts.SaveName != "" {
		if err := keyfile.ValidateName(opts.SaveName); err != nil {
			return WrapError(err)
		}
	}

	algoName := opts.Algorithm
	if algoName == "" {
		algoName = string(key.DefaultAlgorithm)
	}
	algo, err := key.ParseAlgorithm(algoName)
	if err != nil {
		return WrapError(err)
	}

	builder := keygen.New()
	builder.Config = c.policy.Config()
	if err := builder.Primary(key.Primary(algo)); err != nil {
		return WrapError(err)
	}
	for _, uid := range opts.UserIDs {
		if err := builder.AddUserID(uid); err != nil {
			return WrapError(err)
		}
	}

	subkeySpecs := opts.Subkeys
	if len(subkeySpecs) == 0 {
		subkeySpecs = defaultSubkeySpecs(algo)
	}
	for _, spec := range subkeySpecs {
		parsed, err := parseSubkeySpec(spec)
		if err != nil {
			return err
		}
		if err := builder.AddSubkey(parsed); err != nil {
			return WrapError(err)
		}
	}

	if opts.Expiry != "" && !strings.EqualFold(opts.Expiry, "never") {
		expiry, err := parseDate(opts.Expiry)
		if err != nil {
			return err
		}
		builder.ExpiresAt(expiry)
	}

	if !opts.NoPassphrase {
		pass, err := c.promptNewPassphrase("Enter passphrase for new key")
		if err != nil {
			return err
		}
		builder.Passphrase(pass)
	}

	skm, err := builder.Generate()
	if err != nil {
		return WrapError(err)
	}

	if opts.SaveName != "" {
		if err := c.store.Save(opts.SaveName, skm); err != nil {
			return WrapError(err)
		}
		c.output.Successf("Stored key ring %q (%s)", opts.SaveName, skm.Fingerprint())
	}

	if opts.SaveName == "" || opts.Output != "" {
		armored, err := skm.Armor()
		if err != nil {
			return WrapError(err)
		}
		if err := c.writeOutput(opts.Output, armored); err != nil {
			return err
		}
	}

	if opts.PubOutput != "" {
		pub, err := skm.Certificate().Armor()
		if err != nil {
			return WrapError(err)
		}
		if err := c.writeOutput(opts.PubOutput, pub); err != nil {
			return err
		}
	}

	return nil
}

// defaultSubkeySpecs returns the subkeys generated when none are requested:
// a signing subkey matching the primary algorithm and an encryption subkey on
// the corresponding curve.
func defaultSubkeySpecs(primary key.Algorithm) []string {
	switch primary {
	case key.AlgorithmED448:
		return []string{"sign:ED448", "encrypt:X448"}
	case key.AlgorithmRSA2048, key.AlgorithmRSA3072, key.AlgorithmRSA4096:
		return []string{"sign:" + string(primary), "encrypt:" + string(primary)}
	default:
		return []string{"sign:ED25519", "encrypt:X25519"}
	}
}

// parseSubkeySpec parses a usage:algorithm pair like "sign:ED25519".
func parseSubkeySpec(spec string) (key.Spec, error) {
	usage, algoName, ok := strings.Cut(spec, ":")
	if !ok {
		return key.Spec{}, NewError(fmt.Sprintf("invalid subkey spec %q: expected usage:algorithm", spec), ExitValidationError)
	}
	algo, err := key.ParseAlgorithm(strings.TrimSpace(algoName))
	if err != nil {
		return key.Spec{}, WrapError(err)
	}
	switch strings.ToLower(strings.TrimSpace(usage)) {
	case "sign":
		return key.Signing(algo), nil
	case "encrypt":
		return key.Encryption(algo), nil
	case "auth", "authenticate":
		return key.Authentication(algo), nil
	}
	return key.Spec{}, NewError(fmt.Sprintf("invalid subkey usage %q: expected sign, encrypt or auth", usage), ExitValidationError)
}

// parseDate accepts a YYYY-MM-DD date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, NewError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s), ExitValidationError)
}
