package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func inceptCmd() *cobra.Command {
	var (
		label    string
		recovery bool
	)
	cmd := &cobra.Command{
		Use:   "incept",
		Short: "Create a new identifier and store its keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			state, phrase, err := wire.Controller.Incept(cmd.Context(), passphrase, label, recovery)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Identifier created.")
			printState(out, state)
			if phrase != "" {
				fmt.Fprintf(out, "Recovery phrase (write it down, it is shown once):\n  %s\n", phrase)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "local name for the identifier")
	cmd.Flags().BoolVar(&recovery, "recovery", false, "derive keys from a new recovery phrase")
	return cmd
}
