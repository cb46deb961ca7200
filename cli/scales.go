package cli

import (
	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/spf13/cobra"
)

func newScalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "List the scale catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), tonal.Scales())
		},
	}
}
