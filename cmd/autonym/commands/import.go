package commands

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"autonym/internal/domain"
	"autonym/internal/protocol/kel"
	"autonym/internal/services/controller"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Validate and store hex wire events read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			stored := make(map[domain.AID][]domain.Event)
			sc := bufio.NewScanner(r)
			sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
			line := 0
			for sc.Scan() {
				line++
				text := strings.TrimSpace(sc.Text())
				if text == "" {
					continue
				}
				b, err := hex.DecodeString(text)
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				ev, err := kel.Decode(b)
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				if _, ok := stored[ev.AID]; !ok {
					events, err := wire.Controller.Events(cmd.Context(), ev.AID)
					if err != nil && !errors.Is(err, controller.ErrUnknownIdentifier) {
						return fmt.Errorf("line %d: %w", line, err)
					}
					stored[ev.AID] = events
				}
				if have := stored[ev.AID]; ev.Seq < uint64(len(have)) && have[ev.Seq].Digest == ev.Digest {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  seq=%d  %s  (already stored)\n", ev.AID, ev.Seq, ev.Type)
					continue
				}
				state, err := wire.Controller.Ingest(cmd.Context(), ev)
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  seq=%d  %s\n", state.AID, state.Seq, ev.Type)
			}
			return sc.Err()
		},
	}
}
