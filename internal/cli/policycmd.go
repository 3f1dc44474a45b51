package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
)

// PolicyInit writes the default policy file at the effective policy path. An
// existing file is never overwritten.
func (c *CLI) PolicyInit() error {
	if _, err := os.Stat(c.policyPath); err == nil {
		return NewError(fmt.Sprintf("policy file already exists: %s", c.policyPath), ExitPolicyError)
	}
	if err := policy.Save(c.policyPath, policy.Default()); err != nil {
		return NewError(fmt.Sprintf("failed to write policy: %v", err), ExitIOError)
	}
	c.output.Successf("Wrote default policy to %s", c.policyPath)
	return nil
}

// PolicyShow prints the effective policy and where it came from.
func (c *CLI) PolicyShow() error {
	source := c.policyPath
	if _, err := os.Stat(c.policyPath); err != nil {
		source = "built-in default"
	}
	data, err := yaml.Marshal(c.policy)
	if err != nil {
		return NewError(fmt.Sprintf("failed to marshal policy: %v", err), ExitGeneralError)
	}
	c.output.Successf("# policy source: %s", source)
	c.output.WriteData("%s", string(data))
	return nil
}
