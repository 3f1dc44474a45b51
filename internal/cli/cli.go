// Package cli implements the pgpainless commands over the library packages.
// Each command loads its inputs, runs one library operation and writes armored
// output; cobra wrappers in cmd/pgpainless stay flag-only.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kkpan11/pgpainless/internal/xdg"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keyfile"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/output"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
)

// ResolvePolicyPath returns the effective policy path considering:
// 1. Explicit policyPath argument (highest priority, the --policy flag)
// 2. PGPAINLESS_POLICY env var
// 3. XDG default path
func ResolvePolicyPath(policyPath string, silent bool, stderr io.Writer) string {
	if policyPath != "" {
		if !silent && os.Getenv("PGPAINLESS_POLICY") != "" {
			_, _ = fmt.Fprintf(stderr, "warning: PGPAINLESS_POLICY environment variable ignored because --policy flag was specified\n")
		}
		return policyPath
	}
	if envPolicy := os.Getenv("PGPAINLESS_POLICY"); envPolicy != "" {
		return envPolicy
	}
	xdgPaths, _ := xdg.NewPaths()
	return xdgPaths.PolicyPath()
}

// CLI represents the command-line interface
type CLI struct {
	policyPath string
	policy     policy.Policy
	xdgPaths   xdg.Paths
	store      *keyfile.Store
	stdin      io.Reader
	Silent     bool
	output     *output.Handler
}

// NewCLI creates a new CLI instance. A missing policy file falls back to the
// built-in default policy; an explicitly specified one must load.
func NewCLI(policyPath string, silent bool, stdin io.Reader, stdout, stderr io.Writer) (*CLI, error) {
	xdgPaths, err := xdg.NewPaths()
	if err != nil {
		return nil, NewError(fmt.Sprintf("failed to get XDG paths: %v", err), ExitPolicyError)
	}

	explicit := policyPath != "" || os.Getenv("PGPAINLESS_POLICY") != ""
	resolvedPolicyPath := ResolvePolicyPath(policyPath, silent, stderr)

	if err := xdgPaths.EnsureDirs(); err != nil {
		return nil, NewError(fmt.Sprintf("failed to create directories: %v", err), ExitIOError)
	}

	pol := policy.Default()
	if _, statErr := os.Stat(resolvedPolicyPath); statErr == nil {
		pol, err = policy.Load(resolvedPolicyPath)
		if err != nil {
			return nil, NewError(fmt.Sprintf("failed to load policy: %v", err), ExitPolicyError)
		}
	} else if explicit {
		return nil, NewError(fmt.Sprintf("policy file not found: %s", resolvedPolicyPath), ExitPolicyError)
	}

	store, err := keyfile.Open(xdgPaths.DataDir())
	if err != nil {
		return nil, NewError(fmt.Sprintf("failed to open key store: %v", err), ExitIOError)
	}

	return &CLI{
		policyPath: resolvedPolicyPath,
		policy:     pol,
		xdgPaths:   xdgPaths,
		store:      store,
		stdin:      stdin,
		Silent:     silent,
		output: output.NewHandler(stdout, stderr,
			output.WithSilent(silent),
			output.WithStdin(stdin),
		),
	}, nil
}

// Output returns the output handler for this CLI instance.
func (c *CLI) Output() *output.Handler {
	return c.output
}

// Policy returns the effective certification policy.
func (c *CLI) Policy() policy.Policy {
	return c.policy
}

// Store returns the named key store.
func (c *CLI) Store() *keyfile.Store {
	return c.store
}

// readInput reads a file argument; "-" reads stdin.
func (c *CLI) readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return nil, NewError(fmt.Sprintf("failed to read stdin: %v", err), ExitIOError)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewError(fmt.Sprintf("no such file: %s", path), ExitNotFoundError)
		}
		return nil, NewError(fmt.Sprintf("failed to read %s: %v", path, err), ExitIOError)
	}
	return data, nil
}

// loadSecretRing resolves a --key argument: a file path, "-" for stdin, or
// the name of a stored ring.
func (c *CLI) loadSecretRing(arg string) (*cert.SecretKeyMaterial, error) {
	if arg == "" {
		return nil, NewError("a key ring is required (--key FILE or stored name)", ExitValidationError)
	}
	if arg != "-" {
		if _, err := os.Stat(arg); os.IsNotExist(err) {
			if keyfile.ValidateName(arg) == nil && c.store.Exists(arg) {
				skm, loadErr := c.store.Load(arg)
				if loadErr != nil {
					return nil, WrapError(loadErr)
				}
				return skm, nil
			}
			return nil, NewError(fmt.Sprintf("no key file or stored ring named %q", arg), ExitNotFoundError)
		}
	}
	data, err := c.readInput(arg)
	if err != nil {
		return nil, err
	}
	skm, err := cert.ParseSecretKeyMaterial(strings.NewReader(string(data)))
	if err != nil {
		return nil, WrapError(err)
	}
	return skm, nil
}

// loadCertificate resolves a --cert argument the same way loadSecretRing
// resolves --key, stripping secret material from stored rings.
func (c *CLI) loadCertificate(arg string) (*cert.Certificate, error) {
	if arg == "" {
		return nil, NewError("a certificate is required (--cert FILE or stored name)", ExitValidationError)
	}
	if arg != "-" {
		if _, err := os.Stat(arg); os.IsNotExist(err) {
			if keyfile.ValidateName(arg) == nil && c.store.Exists(arg) {
				crt, loadErr := c.store.LoadCertificate(arg)
				if loadErr != nil {
					return nil, WrapError(loadErr)
				}
				return crt, nil
			}
			return nil, NewError(fmt.Sprintf("no certificate file or stored ring named %q", arg), ExitNotFoundError)
		}
	}
	data, err := c.readInput(arg)
	if err != nil {
		return nil, err
	}
	crt, err := cert.ParseCertificate(strings.NewReader(string(data)))
	if err != nil {
		return nil, WrapError(err)
	}
	return crt, nil
}

// writeOutput writes armored content to path; "" and "-" write stdout.
func (c *CLI) writeOutput(path, content string) error {
	if path == "" || path == "-" {
		c.output.WriteData("%s", content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return NewError(fmt.Sprintf("failed to write %s: %v", path, err), ExitIOError)
	}
	return nil
}

// ringEncrypted reports whether any secret key of the ring is
// passphrase-protected.
func ringEncrypted(skm *cert.SecretKeyMaterial) bool {
	e := skm.Entity()
	if e.PrivateKey != nil && e.PrivateKey.Encrypted {
		return true
	}
	for i := range e.Subkeys {
		if sk := e.Subkeys[i].PrivateKey; sk != nil && sk.Encrypted {
			return true
		}
	}
	return false
}

// protectorFor prompts for the ring's passphrase when it is protected.
func (c *CLI) protectorFor(skm *cert.SecretKeyMaterial, prompt string) (*protect.Protector, error) {
	if !ringEncrypted(skm) {
		return protect.Unprotected(), nil
	}
	pass, err := c.promptPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	return protect.WithPassphrase(pass), nil
}
