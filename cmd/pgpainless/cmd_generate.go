package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var generateOpts clilib.GenerateOptions

var generateCmd = &cobra.Command{
	Use:   "generate --uid UID [--uid UID]...",
	Short: "Generate a new key ring",
	Long: `Generate a new OpenPGP key ring: a certification-capable primary key,
self-certified user ids and the requested subkeys.

Without --subkey flags a signing and an encryption subkey matching the
primary algorithm are generated. The secret key material is protected by
a passphrase unless --no-passphrase is given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.Generate(generateOpts)
		})
	},
}

func init() {
	generateCmd.Flags().StringArrayVar(&generateOpts.UserIDs, "uid", nil, "User id to bind (repeatable, first becomes primary)")
	generateCmd.Flags().StringVar(&generateOpts.Algorithm, "algo", "", "Primary key algorithm (default ED25519)")
	generateCmd.Flags().StringArrayVar(&generateOpts.Subkeys, "subkey", nil, "Subkey spec usage:algorithm, e.g. sign:ED25519 (repeatable)")
	generateCmd.Flags().StringVar(&generateOpts.Expiry, "expiry", "", "Expiration date (YYYY-MM-DD) or 'never'")
	generateCmd.Flags().BoolVar(&generateOpts.NoPassphrase, "no-passphrase", false, "Store the secret key material unprotected")
	generateCmd.Flags().StringVarP(&generateOpts.Output, "output", "o", "", "Write the secret key ring to FILE ('-' for stdout)")
	generateCmd.Flags().StringVar(&generateOpts.PubOutput, "pub", "", "Also write the public certificate to FILE")
	generateCmd.Flags().StringVar(&generateOpts.SaveName, "save", "", "Store the ring under NAME in the local key store")
}
