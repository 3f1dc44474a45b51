package main

import (
	"github.com/spf13/cobra"
)

var (
	version = "unknown"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pgpainless",
	Short: "OpenPGP key lifecycle and certification",
	Long: `pgpainless: OpenPGP key lifecycle and certification.

Generate key rings, certify user ids, delegate trust, revoke keys and
rotate passphrases. Keys are armored files or named rings in the local
store; certification is gated by a configurable algorithm policy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand, show help
		_ = cmd.Help()
	},
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&globalOpts.PolicyPath, "policy", "", "Path to algorithm policy file")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Silent, "silent", "s", false, "Silent mode (suppress warnings and status messages)")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(certifyCmd)
	rootCmd.AddCommand(delegateCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(uidCmd)
	rootCmd.AddCommand(subkeyCmd)
	rootCmd.AddCommand(expireCmd)
	rootCmd.AddCommand(passphraseCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
