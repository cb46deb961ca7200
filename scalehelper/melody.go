package scalehelper

import (
	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
	"github.com/RyanBlaney/sonido-armonia/pattern"
)

// Contour shapes
const (
	ContourAscending    = "ascending"
	ContourDescending   = "descending"
	ContourArch         = "arch"
	ContourInvertedArch = "inverted_arch"
	ContourStatic       = "static"
)

// Leap is a move of more than a whole tone between successive notes
type Leap struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Interval int    `json:"interval"` // pitch-class distance
	Position int    `json:"position"` // step of the second note
}

// Climax is the highest note of the melody
type Climax struct {
	Pitch    string `json:"pitch"`
	Position int    `json:"position"`
}

// MelodicSequence is a repeated melodic fragment. Reserved: reports always
// carry an empty list.
type MelodicSequence struct {
	Notes     []string `json:"notes"`
	Positions []int    `json:"positions"`
}

// MelodicAnalysis describes the shape and motion of a melody. Intervals are
// circular pitch-class distances, so an octave counts as 0.
type MelodicAnalysis struct {
	Contour         string            `json:"contour"`
	Range           int               `json:"range"` // semitones
	AverageInterval float64           `json:"average_interval"`
	StepwiseMotion  int               `json:"stepwise_motion"` // percent
	Leaps           []Leap            `json:"leaps"`
	Sequences       []MelodicSequence `json:"sequences"`
	Climax          Climax            `json:"climax"`
}

type melodyMetrics struct {
	rangeSemitones int
	stepwisePct    int
}

// AnalyzeMelody classifies the contour of the notes in step order. Fewer than
// two notes give a static report; with no notes the climax is C4.
func (a *Analyzer) AnalyzeMelody(notes []pattern.NoteEvent) (*MelodicAnalysis, error) {
	parsed, err := parseNotes(notes)
	if err != nil {
		return nil, err
	}
	return analyzeMelody(parsed), nil
}

func analyzeMelody(parsed []parsedNote) *MelodicAnalysis {
	analysis := &MelodicAnalysis{
		Contour:   ContourStatic,
		Leaps:     []Leap{},
		Sequences: []MelodicSequence{},
		Climax:    Climax{Pitch: "C4", Position: 0},
	}

	switch len(parsed) {
	case 0:
		return analysis
	case 1:
		analysis.Climax = Climax{Pitch: parsed[0].Pitch, Position: parsed[0].Step}
		return analysis
	}

	midi := make([]float64, len(parsed))
	for i, n := range parsed {
		midi[i] = float64(n.midi)
	}

	lo, hi := common.MinMax(midi)
	analysis.Range = int(hi - lo)
	analysis.Contour = classifyContour(midi)

	intervals := make([]int, 0, len(parsed)-1)
	stepwise := 0
	for i := 1; i < len(parsed); i++ {
		prev, cur := parsed[i-1], parsed[i]
		d := chroma.CircularDistance(prev.pc, cur.pc)
		intervals = append(intervals, d)

		switch {
		case d > 2:
			analysis.Leaps = append(analysis.Leaps, Leap{
				From:     prev.Pitch,
				To:       cur.Pitch,
				Interval: d,
				Position: cur.Step,
			})
		case d > 0:
			stepwise++
		}
	}
	analysis.AverageInterval = common.MeanInts(intervals)
	analysis.StepwiseMotion = common.Percent(stepwise, len(intervals))

	top := parsed[common.ArgMax(midi)]
	analysis.Climax = Climax{Pitch: top.Pitch, Position: top.Step}

	return analysis
}

// classifyContour tests the shapes in a fixed order; an ambiguous melody takes
// the first shape that matches. The middle note of an odd-length melody
// belongs to both halves.
func classifyContour(midi []float64) string {
	n := len(midi)
	first, last := midi[0], midi[n-1]
	lowest, highest := common.ArgMin(midi), common.ArgMax(midi)

	interior := func(i int) bool { return i > 0 && i < n-1 }
	firstHalf := func(i int) bool { return 2*i <= n-1 }
	secondHalf := func(i int) bool { return 2*i >= n-1 }

	switch {
	case interior(lowest) && firstHalf(lowest) && last < first:
		return ContourInvertedArch
	case interior(highest) && secondHalf(highest) && last > first:
		return ContourArch
	case last-first > 2:
		return ContourAscending
	case first-last > 2:
		return ContourDescending
	default:
		return ContourStatic
	}
}

func measureMelody(parsed []parsedNote) melodyMetrics {
	m := analyzeMelody(parsed)
	return melodyMetrics{
		rangeSemitones: m.Range,
		stepwisePct:    m.StepwiseMotion,
	}
}
