package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
	level    logging.Level
	cfg      *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sonido-armonia",
		Short: "Harmonic and melodic analysis for step-sequencer patterns",
		Long: `sonido-armonia detects the key of a pattern, labels its chord progressions,
describes its melody and suggests chords that lead on smoothly from a progression.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			levelName := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				levelName = opts.logLevel
			}
			level, err := logging.ParseLevel(levelName)
			if err != nil {
				return err
			}
			opts.level = level

			// stdout carries command output
			logger := logging.NewDefaultLoggerTo(cmd.ErrOrStderr(), cmd.ErrOrStderr(), false)
			logger.SetLevel(level)
			logging.SetGlobalLogger(logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newScalesCmd(),
		newAnalyzeCmd(opts),
		newSuggestCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// Execute runs the CLI
func Execute() {
	cmd := NewRootCmd()
	cmd.SetOut(os.Stdout)
	cobra.CheckErr(cmd.Execute())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
