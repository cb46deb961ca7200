package cli

import (
	"fmt"

	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/pattern"
	"github.com/RyanBlaney/sonido-armonia/scalehelper"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var root, scale string

	cmd := &cobra.Command{
		Use:   "analyze <pattern.json|file.mid>",
		Short: "Analyze the key, harmony and melody of a pattern",
		Long: `Analyze reads a JSON pattern or a Standard MIDI File and prints the musical,
harmonic and melodic analysis plus tips as JSON. The key to measure against
comes from --root/--scale, then the pattern itself, then the configured default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.WithFields(logging.Fields{
				"component": "cli",
				"command":   "analyze",
				"file":      args[0],
			})

			p, err := pattern.Load(args[0], opts.cfg.StepsPerQuarter)
			if err != nil {
				return err
			}
			if err := pattern.Validate(p.Notes); err != nil {
				return fmt.Errorf("invalid pattern %s: %w", args[0], err)
			}

			ctx, err := tonal.NewScaleContext(
				firstNonEmpty(root, p.Root, opts.cfg.DefaultRoot),
				firstNonEmpty(scale, p.Scale, opts.cfg.DefaultScale),
			)
			if err != nil {
				return err
			}

			logger.Debug("Pattern loaded", logging.Fields{
				"notes": len(p.Notes),
				"key":   ctx.KeyName(),
			})

			report, err := scalehelper.NewAnalyzer(ctx, nil).Analyze(p.Notes)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "root note of the assumed key")
	cmd.Flags().StringVar(&scale, "scale", "", "scale id of the assumed key")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
