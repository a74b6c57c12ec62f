package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"autonym/internal/app"
	"autonym/internal/domain"
)

var (
	home        string
	passphrase  string
	configPath  string
	logLevel    string
	showMetrics bool
	wire        *app.Wire
)

var errNoPassphrase = errors.New("passphrase required (-p)")

// Execute runs the CLI with os.Args.
func Execute() error {
	return Run(NewRoot())
}

// Run executes root and then releases the stores opened for the command,
// including when the command fails.
func Run(root *cobra.Command) error {
	err := root.Execute()
	if wire == nil {
		return err
	}
	if showMetrics {
		if merr := printMetrics(root.ErrOrStderr()); err == nil {
			err = merr
		}
	}
	w := wire
	wire = nil
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewRoot returns the root command with every subcommand attached.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "autonym",
		Short:        "Self-certifying identifiers with pre-rotated key event logs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath, home)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			wire, err = app.NewWire(cfg, cmd.ErrOrStderr())
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.autonym or $AUTONYM_HOME)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keyring")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print counters to stderr on exit")

	root.AddCommand(
		inceptCmd(),
		rotateCmd(),
		deactivateCmd(),
		showCmd(),
		listCmd(),
		exportCmd(),
		importCmd(),
		sealCmd(),
		openCmd(),
		fingerprintCmd(),
	)
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return errNoPassphrase
	}
	return nil
}

func parseAID(s string) (domain.AID, error) {
	aid, err := domain.ParseAID(strings.TrimSpace(s))
	if err != nil {
		return domain.AID{}, fmt.Errorf("invalid identifier: %w", err)
	}
	return aid, nil
}

func printState(w io.Writer, s domain.KeyState) {
	fmt.Fprintf(w, "AID:      %s\n", s.AID)
	fmt.Fprintf(w, "Sequence: %d\n", s.Seq)
	fmt.Fprintf(w, "Status:   %s\n", s.Status())
	if !s.Deactivated {
		fmt.Fprintf(w, "Key:      %x\n", s.CurrentKey[:])
		fmt.Fprintf(w, "Next:     %s\n", s.NextCommitment)
	}
	fmt.Fprintf(w, "Digest:   %s\n", s.LastDigest)
}

// printMetrics writes every counter sample as "name{labels} value".
func printMetrics(w io.Writer) error {
	families, err := wire.Registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, f := range families {
		for _, m := range f.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", f.GetName(), strings.Join(pairs, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
