package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"autonym/internal/domain"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List identifiers with a stored log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := wire.Log.Identifiers(ctx)
			if err != nil {
				return err
			}

			labels := map[domain.AID]string{}
			if passphrase != "" {
				entries, err := wire.Keyring.ListEntries(passphrase)
				if err != nil {
					return err
				}
				for _, e := range entries {
					labels[e.AID] = e.Label
				}
			}

			out := cmd.OutOrStdout()
			for _, aid := range ids {
				state, err := wire.Controller.State(ctx, aid)
				if err != nil {
					fmt.Fprintf(out, "%s  invalid: %v\n", aid, err)
					continue
				}
				fmt.Fprintf(out, "%s  seq=%d  %-11s  %s\n", aid, state.Seq, state.Status(), labels[aid])
			}
			return nil
		},
	}
}
