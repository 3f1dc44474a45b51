package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage the algorithm policy",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default policy file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.PolicyInit()
		})
	},
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.PolicyShow()
		})
	},
}

func init() {
	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyShowCmd)
}
