package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"autonym/internal/protocol/kel"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <aid>",
		Short: "Print a log as hex wire events, one per line",
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
			for _, ev := range events {
				b, err := kel.Encode(ev)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			}
			return nil
		},
	}
}
