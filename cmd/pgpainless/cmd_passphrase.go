package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var passphraseOpts clilib.PassphraseOptions

var passphraseCmd = &cobra.Command{
	Use:   "passphrase --key FILE",
	Short: "Change a key ring's passphrase",
	Long: `Rotate the passphrase protecting the ring's secret key packets.

The old passphrase is prompted when the ring is encrypted, and the new
one is prompted twice unless --to-none is given. With --subkey only the
named subkey's packet is re-protected.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.Passphrase(passphraseOpts)
		})
	},
}

func init() {
	passphraseCmd.Flags().StringVar(&passphraseOpts.KeyFile, "key", "", "Secret key ring to edit (file or stored name)")
	passphraseCmd.Flags().BoolVar(&passphraseOpts.ToNone, "to-none", false, "Remove passphrase protection")
	passphraseCmd.Flags().StringVar(&passphraseOpts.Subkey, "subkey", "", "Hex key id of a single subkey to re-protect")
	passphraseCmd.Flags().StringVarP(&passphraseOpts.Output, "output", "o", "", "Write the edited ring to FILE ('-' for stdout)")
	passphraseCmd.Flags().StringVar(&passphraseOpts.SaveName, "save", "", "Store the edited ring under NAME in the local key store")
}
