package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var revokeOpts clilib.RevokeOptions

var revokeCmd = &cobra.Command{
	Use:   "revoke --key FILE",
	Short: "Revoke a key ring",
	Long: `Revoke the primary key of a ring.

Without a --reason the revocation is a hard compromised-key revocation.
With --detached a standalone revocation certificate is written instead
and the ring itself stays untouched.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.Revoke(revokeOpts)
		})
	},
}

func init() {
	revokeCmd.Flags().StringVar(&revokeOpts.KeyFile, "key", "", "Secret key ring to revoke (file or stored name)")
	revokeCmd.Flags().StringVar(&revokeOpts.Reason, "reason", "", "Revocation reason: compromised, superseded, retired or none")
	revokeCmd.Flags().StringVar(&revokeOpts.Message, "message", "", "Human-readable revocation message")
	revokeCmd.Flags().BoolVar(&revokeOpts.Detached, "detached", false, "Write a detached revocation certificate, leaving the ring untouched")
	revokeCmd.Flags().StringVarP(&revokeOpts.Output, "output", "o", "", "Write the result to FILE ('-' for stdout)")
	revokeCmd.Flags().StringVar(&revokeOpts.SaveName, "save", "", "Store the result under NAME in the local key store")
}
