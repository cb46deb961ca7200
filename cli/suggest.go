package cli

import (
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/pattern"
	"github.com/RyanBlaney/sonido-armonia/scalehelper"
	"github.com/spf13/cobra"
)

type suggestion struct {
	tonal.RankedChord
	Preview []string `json:"preview"`
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var root, scale, history string
	var octave int

	cmd := &cobra.Command{
		Use:     "suggest",
		Short:   "Suggest the next chord after a progression",
		Example: `  sonido-armonia suggest --root C --scale major --history "C,Am,F"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := tonal.NewScaleContext(
				firstNonEmpty(root, opts.cfg.DefaultRoot),
				firstNonEmpty(scale, opts.cfg.DefaultScale),
			)
			if err != nil {
				return err
			}

			advisor := scalehelper.NewAnalyzer(ctx, nil).NewAdvisor()
			for _, name := range strings.Split(history, ",") {
				if name = strings.TrimSpace(name); name == "" {
					continue
				}
				chord, err := ctx.FindChord(name)
				if err != nil {
					return err
				}
				advisor.AddToHistory(chord)
			}

			ranked := advisor.RankNext()
			out := make([]suggestion, len(ranked))
			for i, r := range ranked {
				preview, err := pattern.PreviewPitches(r.Notes, octave)
				if err != nil {
					return err
				}
				out[i] = suggestion{RankedChord: r, Preview: preview}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "root note of the key")
	cmd.Flags().StringVar(&scale, "scale", "", "scale id of the key")
	cmd.Flags().StringVar(&history, "history", "", "comma separated chords already chosen, oldest first")
	cmd.Flags().IntVar(&octave, "octave", 4, "octave of the preview pitches")
	return cmd
}
