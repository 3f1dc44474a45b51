package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var expireOpts clilib.ExpireOptions

var expireCmd = &cobra.Command{
	Use:   "expire --key FILE (--at DATE | --never)",
	Short: "Change a key's expiration date",
	Long: `Re-issue the relevant self-signature with a new expiration date.

Without --fingerprint the primary key's expiration changes; with it the
named subkey's binding is re-issued instead. Dates are YYYY-MM-DD or
RFC 3339 timestamps.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.Expire(expireOpts)
		})
	},
}

func init() {
	expireCmd.Flags().StringVar(&expireOpts.KeyFile, "key", "", "Secret key ring to edit (file or stored name)")
	expireCmd.Flags().StringVar(&expireOpts.At, "at", "", "New expiration date (YYYY-MM-DD or RFC 3339)")
	expireCmd.Flags().BoolVar(&expireOpts.Never, "never", false, "Remove the expiration date")
	expireCmd.Flags().StringVar(&expireOpts.Fingerprint, "fingerprint", "", "Hex fingerprint of the subkey to re-issue instead of the primary key")
	expireCmd.Flags().StringVarP(&expireOpts.Output, "output", "o", "", "Write the edited ring to FILE ('-' for stdout)")
	expireCmd.Flags().StringVar(&expireOpts.SaveName, "save", "", "Store the edited ring under NAME in the local key store")
}
