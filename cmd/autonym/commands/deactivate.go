package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func deactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <aid>",
		Short: "Permanently terminate an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			aid, err := parseAID(args[0])
			if err != nil {
				return err
			}
			state, err := wire.Controller.Deactivate(cmd.Context(), passphrase, aid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Identifier deactivated.")
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}
