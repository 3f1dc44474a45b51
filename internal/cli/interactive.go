package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
)

// promptPassphrase reads a passphrase without echo when a terminal is
// available, otherwise one line from the configured stdin. The prompt goes to
// stderr so data output on stdout stays clean.
func (c *CLI) promptPassphrase(prompt string) (*protect.Passphrase, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprintf(c.output.Stderr(), "%s: ", prompt)
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(c.output.Stderr())
		if err != nil {
			return nil, NewError(fmt.Sprintf("failed to read passphrase: %v", err), ExitIOError)
		}
		pass := protect.NewPassphrase(raw)
		for i := range raw {
			raw[i] = 0
		}
		return pass, nil
	}

	reader := bufio.NewReader(c.stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, NewError("failed to read passphrase from stdin", ExitIOError)
	}
	return protect.PassphraseFromString(strings.TrimRight(line, "\r\n")), nil
}

// promptNewPassphrase reads a passphrase twice and rejects mismatches. An
// empty answer means no protection.
func (c *CLI) promptNewPassphrase(prompt string) (*protect.Passphrase, error) {
	first, err := c.promptPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	if first.Empty() {
		return first, nil
	}
	second, err := c.promptPassphrase(prompt + " (repeat)")
	if err != nil {
		first.Clear()
		return nil, err
	}
	firstBytes, _ := first.Bytes()
	secondBytes, _ := second.Bytes()
	match := string(firstBytes) == string(secondBytes)
	second.Clear()
	if !match {
		first.Clear()
		return nil, NewError("passphrases do not match", ExitValidationError)
	}
	return first, nil
}
