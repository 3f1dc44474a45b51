package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var (
	delegateOpts   clilib.DelegateOptions
	delegateDepth  uint8
	delegateAmount uint8
)

var delegateCmd = &cobra.Command{
	Use:   "delegate --cert FILE --key FILE",
	Short: "Delegate trust to a certificate",
	Long: `Issue a direct-key delegation signature over a certificate.

With --depth and --amount the signature carries a trust subpacket making
the target an introducer; without them a plain direct-key signature is
issued.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		delegateOpts.HasTrust = cmd.Flags().Changed("depth") || cmd.Flags().Changed("amount")
		delegateOpts.Depth = delegateDepth
		delegateOpts.Amount = delegateAmount
		run(func(cli *clilib.CLI) error {
			return cli.Delegate(delegateOpts)
		})
	},
}

func init() {
	delegateCmd.Flags().StringVar(&delegateOpts.CertFile, "cert", "", "Certificate to delegate to (file or stored name)")
	delegateCmd.Flags().StringVar(&delegateOpts.KeyFile, "key", "", "Delegating secret key ring (file or stored name)")
	delegateCmd.Flags().Uint8Var(&delegateDepth, "depth", 1, "Trust depth (introduction levels delegated, at least 1)")
	delegateCmd.Flags().Uint8Var(&delegateAmount, "amount", 120, "Trust amount (60 marginal, 120 full)")
	delegateCmd.Flags().StringVarP(&delegateOpts.Output, "output", "o", "", "Write the delegated copy to FILE ('-' for stdout)")
}
