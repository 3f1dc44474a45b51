package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/interop"
)

// InspectOptions holds the arguments of the inspect command.
type InspectOptions struct {
	File string
	JSON bool
}

// Inspect summarizes a certificate or key ring: algorithms, user ids,
// subkeys, capabilities and revocation state under the effective policy.
func (c *CLI) Inspect(opts InspectOptions) error {
	crt, err := c.loadCertificate(opts.File)
	if err != nil {
		return err
	}
	summary := interop.Summarize(crt, c.policy, time.Now())

	if opts.JSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return NewError(fmt.Sprintf("failed to marshal summary: %v", err), ExitGeneralError)
		}
		c.output.WriteLine(string(data))
		return nil
	}

	c.output.WriteLine(fmt.Sprintf("Fingerprint:  %s", summary.Fingerprint))
	c.output.WriteLine(fmt.Sprintf("Algorithm:    %s (%d bits)", summary.Algorithm, summary.AlgorithmBits))
	c.output.WriteLine(fmt.Sprintf("Created:      %s", summary.CreatedAt.UTC().Format("2006-01-02")))
	if summary.ExpiresAt != nil {
		c.output.WriteLine(fmt.Sprintf("Expires:      %s", summary.ExpiresAt.UTC().Format("2006-01-02")))
	} else {
		c.output.WriteLine("Expires:      never")
	}
	if summary.Revoked {
		c.output.WriteLine("Revoked:      yes")
	}
	var caps []string
	if summary.CanCertify {
		caps = append(caps, "certify")
	}
	if summary.CanSign {
		caps = append(caps, "sign")
	}
	if summary.CanEncrypt {
		caps = append(caps, "encrypt")
	}
	if len(caps) == 0 {
		caps = append(caps, "none")
	}
	c.output.WriteLine(fmt.Sprintf("Capabilities: %s", strings.Join(caps, ", ")))

	for _, uid := range summary.UserIDs {
		marker := " "
		if uid == summary.PrimaryUserID {
			marker = "*"
		}
		c.output.WriteLine(fmt.Sprintf("uid         %s %s", marker, uid))
	}
	for _, sub := range summary.Subkeys {
		line := fmt.Sprintf("sub          %s %s (%d bits) [%s]", sub.Fingerprint, sub.Algorithm, sub.AlgorithmBits, sub.Usage)
		if sub.Revoked {
			line += " [revoked]"
		} else if sub.ExpiresAt != nil {
			line += fmt.Sprintf(" [expires %s]", sub.ExpiresAt.UTC().Format("2006-01-02"))
		}
		c.output.WriteLine(line)
	}
	return nil
}
