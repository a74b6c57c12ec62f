package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"autonym/internal/protocol/kel"
)

func showCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "show <aid>",
		Short: "Replay a log and print its state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aid, err := parseAID(args[0])
			if err != nil {
				return err
			}
			events, err := wire.Controller.Events(cmd.Context(), aid)
			if err != nil {
				return err
			}
			state, err := kel.Replay(events)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printState(out, state)
			if verbose {
				for _, ev := range events {
					fmt.Fprintf(out, "  %d  %-12s  %s  %s\n", ev.Seq, ev.Type, ev.Timestamp, ev.Digest)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every event")
	return cmd
}
