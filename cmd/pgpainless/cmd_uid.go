package main

import (
	clilib "github.com/kkpan11/pgpainless/internal/cli"
	"github.com/spf13/cobra"
)

var (
	uidAddOpts    clilib.UIDOptions
	uidRevokeOpts clilib.UIDOptions
)

var uidCmd = &cobra.Command{
	Use:   "uid",
	Short: "Manage user ids on a key ring",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var uidAddCmd = &cobra.Command{
	Use:   "add --key FILE --uid USERID",
	Short: "Bind a new user id to the primary key",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.UIDAdd(uidAddOpts)
		})
	},
}

var uidRevokeCmd = &cobra.Command{
	Use:   "revoke --key FILE --uid USERID",
	Short: "Revoke a user id's self-certification",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(cli *clilib.CLI) error {
			return cli.UIDRevoke(uidRevokeOpts)
		})
	},
}

func init() {
	uidAddCmd.Flags().StringVar(&uidAddOpts.KeyFile, "key", "", "Secret key ring to edit (file or stored name)")
	uidAddCmd.Flags().StringVar(&uidAddOpts.UserID, "uid", "", "User id to add, e.g. \"Alice <alice@example.org>\"")
	uidAddCmd.Flags().StringVarP(&uidAddOpts.Output, "output", "o", "", "Write the edited ring to FILE ('-' for stdout)")
	uidAddCmd.Flags().StringVar(&uidAddOpts.SaveName, "save", "", "Store the edited ring under NAME in the local key store")

	uidRevokeCmd.Flags().StringVar(&uidRevokeOpts.KeyFile, "key", "", "Secret key ring to edit (file or stored name)")
	uidRevokeCmd.Flags().StringVar(&uidRevokeOpts.UserID, "uid", "", "User id to revoke")
	uidRevokeCmd.Flags().StringVar(&uidRevokeOpts.Reason, "reason", "", "Revocation reason: retired or none")
	uidRevokeCmd.Flags().StringVar(&uidRevokeOpts.Message, "message", "", "Human-readable revocation message")
	uidRevokeCmd.Flags().StringVarP(&uidRevokeOpts.Output, "output", "o", "", "Write the edited ring to FILE ('-' for stdout)")
	uidRevokeCmd.Flags().StringVar(&uidRevokeOpts.SaveName, "save", "", "Store the edited ring under NAME in the local key store")

	uidCmd.AddCommand(uidAddCmd)
	uidCmd.AddCommand(uidRevokeCmd)
}
