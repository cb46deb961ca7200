package scalehelper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
)

// Tip is a short piece of teaching content
type Tip struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

var complexityTips = map[string]Tip{
	ComplexityBeginner: {
		Category: "getting_started",
		Title:    "Start with the root",
		Content: "Begin and end your pattern on the root note of the scale. " +
			"Then move to neighbouring scale notes before trying bigger jumps.",
	},
}

// PedagogicalTips looks up the canned tip for the analysis' complexity and
// describes the detected scale
func PedagogicalTips(analysis *MusicalAnalysis) ([]Tip, error) {
	if analysis == nil {
		return nil, errors.New("tips require an analysis")
	}

	tips := make([]Tip, 0, 2)
	if tip, ok := complexityTips[analysis.Complexity]; ok {
		tips = append(tips, tip)
	}

	ctx, err := tonal.NewScaleContext(analysis.DetectedRoot, analysis.DetectedScale)
	if err != nil {
		return nil, fmt.Errorf("failed to describe detected scale: %w", err)
	}
	scale := ctx.Scale()

	tips = append(tips, Tip{
		Category: "scale",
		Title:    fmt.Sprintf("About %s %s", ctx.RootName(), scale.Name),
		Content: fmt.Sprintf("%s. Notes: %s.",
			scale.Description, strings.Join(ctx.ScaleNotes(), ", ")),
	})

	return tips, nil
}
