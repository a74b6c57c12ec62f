package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <aid>",
		Short: "Rotate to the pre-committed next key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			aid, err := parseAID(args[0])
			if err != nil {
				return err
			}
			state, err := wire.Controller.Rotate(cmd.Context(), passphrase, aid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Key rotated.")
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}
