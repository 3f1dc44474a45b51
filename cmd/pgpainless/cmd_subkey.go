package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var (
	subkeyAddOpts    clilib.SubkeyOptions
	subkeyRevokeOpts clilib.SubkeyOptions
)

var subkeyCmd = &cobra.Command{
	Use:   "subkey",
	Short: "Manage subkeys on a key ring",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var subkeyAddCmd = &cobra.Command{
	Use:   "add --key FILE --spec USAGE:ALGO",
	Short: "Generate and bind a new subkey",
	Long: `Generate a fresh subkey and bind it to the ring's primary key.

The --spec takes the form USAGE:ALGO, where USAGE is one of sign,
encrypt or auth, e.g. encrypt:X25519 or sign:RSA4096.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.SubkeyAdd(subkeyAddOpts)
		})
	},
}

var subkeyRevokeCmd = &cobra.Command{
	Use:   "revoke --key FILE --fingerprint FPR",
	Short: "Revoke a subkey's binding",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.SubkeyRevoke(subkeyRevokeOpts)
		})
	},
}

func init() {
	subkeyAddCmd.Flags().StringVar(&subkeyAddOpts.KeyFile, "key", "", "Secret key ring to edit (file or stored name)")
	subkeyAddCmd.Flags().StringVar(&subkeyAddOpts.Spec, "spec", "", "Subkey specification, USAGE:ALGO (e.g. encrypt:X25519)")
	subkeyAddCmd.Flags().StringVarP(&subkeyAddOpts.Output, "output", "o", "", "Write the edited ring to FILE ('-' for stdout)")
	subkeyAddCmd.Flags().StringVar(&subkeyAddOpts.SaveName, "save", "", "Store the edited ring under NAME in the local key store")

	subkeyRevokeCmd.Flags().StringVar(&subkeyRevokeOpts.KeyFile, "key", "", "Secret key ring to edit (file or stored name)")
	subkeyRevokeCmd.Flags().StringVar(&subkeyRevokeOpts.Fingerprint, "fingerprint", "", "Hex fingerprint of the subkey to revoke")
	subkeyRevokeCmd.Flags().StringVar(&subkeyRevokeOpts.Reason, "reason", "", "Revocation reason: compromised, superseded, retired or none")
	subkeyRevokeCmd.Flags().StringVar(&subkeyRevokeOpts.Message, "message", "", "Human-readable revocation message")
	subkeyRevokeCmd.Flags().StringVarP(&subkeyRevokeOpts.Output, "output", "o", "", "Write the edited ring to FILE ('-' for stdout)")
	subkeyRevokeCmd.Flags().StringVar(&subkeyRevokeOpts.SaveName, "save", "", "Store the edited ring under NAME in the local key store")

	subkeyCmd.AddCommand(subkeyAddCmd)
	subkeyCmd.AddCommand(subkeyRevokeCmd)
}
