package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var (
	signOpts   clilib.SignOptions
	verifyOpts clilib.VerifyOptions
)

var signCmd = &cobra.Command{
	Use:   "sign --key FILE [FILE]",
	Short: "Create a detached signature over a file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			signOpts.DataFile = args[0]
		}
		run(func(cli *clilib.CLI) error {
			return cli.Sign(signOpts)
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify --cert FILE --sig FILE [FILE]",
	Short: "Verify a detached signature against a certificate",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			verifyOpts.DataFile = args[0]
		}
		run(func(cli *clilib.CLI) error {
			return cli.Verify(verifyOpts)
		})
	},
}

func init() {
	signCmd.Flags().StringVar(&signOpts.KeyFile, "key", "", "Secret key ring to sign with (file or stored name)")
	signCmd.Flags().StringVar(&signOpts.DataFile, "data", "", "File to sign ('-' for stdin)")
	signCmd.Flags().StringVarP(&signOpts.Output, "output", "o", "", "Write the armored signature to FILE ('-' for stdout)")

	verifyCmd.Flags().StringVar(&verifyOpts.CertFile, "cert", "", "Certificate of the signer (file or stored name)")
	verifyCmd.Flags().StringVar(&verifyOpts.SignatureFile, "sig", "", "Armored detached signature file")
	verifyCmd.Flags().StringVar(&verifyOpts.DataFile, "data", "", "Signed file ('-' for stdin)")
}
