package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"autonym/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <aid>",
		Short: "Print short fingerprints of an identifier and its current key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, err := parseAID(args[0])
			if err != nil {
				return err
			}
			state, err := wire.Controller.State(cmd.Context(), aid)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identifier: %s\n", crypto.Fingerprint(aid[:]))
			if !state.Deactivated {
				fmt.Fprintf(out, "Key:        %s\n", crypto.Fingerprint(state.CurrentKey[:]))
			}
			return nil
		},
	}
}
