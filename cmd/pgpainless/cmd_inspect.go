package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var inspectOpts clilib.InspectOptions

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Summarize a certificate or secret key ring",
	Long: `Print a human-readable summary of a ring: fingerprint, algorithm,
user ids, subkeys, capabilities and revocation state. With --json the
summary is emitted as a machine-readable document instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspectOpts.File = args[0]
		run(func(cli *clilib.CLI) error {
			return cli.Inspect(inspectOpts)
		})
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectOpts.JSON, "json", false, "Emit the summary as JSON")
}
