package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var certifyOpts clilib.CertifyOptions

var certifyCmd = &cobra.Command{
	Use:   "certify --cert FILE --uid STRING --key FILE",
	Short: "Certify a user id on a certificate",
	Long: `Issue a third-party certification over one user id of a certificate.

The certifying key must carry the certify flag, be validly bound and
unexpired, and use an algorithm on the policy allow-list. The certified
copy of the certificate is written out; the original file is untouched.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.Certify(certifyOpts)
		})
	},
}

func init() {
	certifyCmd.Flags().StringVar(&certifyOpts.CertFile, "cert", "", "Certificate to certify (file or stored name)")
	certifyCmd.Flags().StringVar(&certifyOpts.UserID, "uid", "", "User id to certify")
	certifyCmd.Flags().StringVar(&certifyOpts.Type, "type", "", "Certification type: generic, persona, casual or positive")
	certifyCmd.Flags().StringVar(&certifyOpts.KeyFile, "key", "", "Certifying secret key ring (file or stored name)")
	certifyCmd.Flags().StringVarP(&certifyOpts.Output, "output", "o", "", "Write the certified copy to FILE ('-' for stdout)")
}
