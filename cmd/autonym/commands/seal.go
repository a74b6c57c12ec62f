package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"autonym/internal/crypto"
	"autonym/internal/protocol/e2e"
)

func sealCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "seal --from <aid> --to <aid> <message>",
		Short: "Encrypt a message to an identifier's current key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromAID, err := parseAID(from)
			if err != nil {
				return err
			}
			toAID, err := parseAID(to)
			if err != nil {
				return err
			}
			env, err := wire.Messages.Seal(cmd.Context(), fromAID, toAID, []byte(args[0]))
			if err != nil {
				return err
			}
			b, err := e2e.EncodeEnvelope(env)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), crypto.B64(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "sending identifier")
	cmd.Flags().StringVar(&to, "to", "", "receiving identifier")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
