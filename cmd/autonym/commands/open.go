package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autonym/internal/crypto"
	"autonym/internal/protocol/e2e"
)

func openCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "open --as <aid> <envelope>",
		Short: "Decrypt a base64 envelope addressed to one of your identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			aid, err := parseAID(as)
			if err != nil {
				return err
			}
			raw, err := crypto.FromB64(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("envelope: %w", err)
			}
			env, err := e2e.DecodeEnvelope(raw)
			if err != nil {
				return err
			}
			pt, err := wire.Messages.Open(cmd.Context(), passphrase, aid, env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "From: %s\nSent: %s\n", env.From, env.Timestamp)
			fmt.Fprintf(out, "%s\n", pt)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "receiving identifier")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
