package tonal

import (
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
)

// MovementType is a coarse label for how the voices of two chords move
type MovementType string

const (
	MovementSmooth   MovementType = "smooth"
	MovementParallel MovementType = "parallel"
	MovementContrary MovementType = "contrary"
	MovementOblique  MovementType = "oblique"
)

// VoiceLeading scores the motion between two chords
type VoiceLeading struct {
	Quality         int          `json:"quality"` // 0-100
	SmoothMovements int          `json:"smooth_movements"`
	TotalMovement   int          `json:"total_movement"` // semitones
	Movement        MovementType `json:"movement"`
}

// RankedChord is a suggestion with the voice-leading score it was ranked by
type RankedChord struct {
	ExtendedChord
	VoiceLeading VoiceLeading `json:"voice_leading"`
}

// ChordAdvisorParams tunes the advisor
type ChordAdvisorParams struct {
	HistorySize int `json:"history_size"` // chords kept before the oldest is evicted
	MinQuality  int `json:"min_quality"`  // voice-leading quality a candidate needs to be suggested
}

// DefaultChordAdvisorParams returns the standard history size and quality gate
func DefaultChordAdvisorParams() ChordAdvisorParams {
	return ChordAdvisorParams{
		HistorySize: 8,
		MinQuality:  60,
	}
}

// Functions tried after the last chosen chord, in order
var functionTransitions = map[HarmonicFunction][]HarmonicFunction{
	FunctionTonic:       {FunctionSubmediant, FunctionSubdominant, FunctionDominant},
	FunctionSubdominant: {FunctionDominant, FunctionTonic, FunctionSubmediant},
	FunctionDominant:    {FunctionTonic, FunctionSubmediant},
}

// ChordAdvisor proposes next chords from a bounded history of chosen chords.
// An advisor belongs to one editing session and is not safe for concurrent use.
type ChordAdvisor struct {
	params  ChordAdvisorParams
	context *ScaleContext
	history []ExtendedChord
}

// NewChordAdvisor creates an advisor over a scale context with default parameters
func NewChordAdvisor(ctx *ScaleContext) *ChordAdvisor {
	return NewChordAdvisorWithParams(ctx, DefaultChordAdvisorParams())
}

// NewChordAdvisorWithParams creates an advisor with custom parameters
func NewChordAdvisorWithParams(ctx *ScaleContext, params ChordAdvisorParams) *ChordAdvisor {
	if params.HistorySize <= 0 {
		params.HistorySize = DefaultChordAdvisorParams().HistorySize
	}
	params.MinQuality = common.Clamp(params.MinQuality, 0, 100)

	return &ChordAdvisor{
		params:  params,
		context: ctx,
		history: make([]ExtendedChord, 0, params.HistorySize),
	}
}

// Context returns the scale context the advisor suggests from
func (ca *ChordAdvisor) Context() *ScaleContext {
	return ca.context
}

// AddToHistory records a chosen chord, evicting the oldest beyond capacity
func (ca *ChordAdvisor) AddToHistory(chord ExtendedChord) {
	ca.history = append(ca.history, chord)
	if overflow := len(ca.history) - ca.params.HistorySize; overflow > 0 {
		ca.history = append(ca.history[:0], ca.history[overflow:]...)
	}
}

// History returns the recorded chords, oldest first
func (ca *ChordAdvisor) History() []ExtendedChord {
	return append([]ExtendedChord(nil), ca.history...)
}

// LastChord returns the most recent chord
func (ca *ChordAdvisor) LastChord() (ExtendedChord, bool) {
	if len(ca.history) == 0 {
		return ExtendedChord{}, false
	}
	return ca.history[len(ca.history)-1], true
}

// ClearHistory starts a new progression
func (ca *ChordAdvisor) ClearHistory() {
	ca.history = ca.history[:0]
}

// SuggestNext returns ranked candidates for the next chord
func (ca *ChordAdvisor) SuggestNext() []ExtendedChord {
	ranked := ca.RankNext()
	chords := make([]ExtendedChord, len(ranked))
	for i, r := range ranked {
		chords[i] = r.ExtendedChord
	}
	return chords
}

// RankNext is SuggestNext with the voice-leading score of every candidate.
// With no history the tonic's basic and intermediate chords are returned unscored.
func (ca *ChordAdvisor) RankNext() []RankedChord {
	last, ok := ca.LastChord()
	if !ok {
		return ca.openingChords()
	}

	ranked := make([]RankedChord, 0)
	for _, candidate := range ca.candidates(last.Function) {
		vl := AnalyzeVoiceLeading(last, candidate)
		if vl.Quality >= ca.params.MinQuality {
			ranked = append(ranked, RankedChord{ExtendedChord: candidate, VoiceLeading: vl})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VoiceLeading.Quality > ranked[j].VoiceLeading.Quality
	})

	return ranked
}

func (ca *ChordAdvisor) openingChords() []RankedChord {
	tonic, ok := ca.context.Triad(1)
	if !ok {
		return []RankedChord{}
	}

	opening := make([]RankedChord, 0)
	for _, chord := range ca.context.GenerateExtensions(tonic) {
		if chord.Complexity == ComplexityBasic || chord.Complexity == ComplexityIntermediate {
			opening = append(opening, RankedChord{ExtendedChord: chord})
		}
	}
	return opening
}

func (ca *ChordAdvisor) candidates(last HarmonicFunction) []ExtendedChord {
	triads := ca.context.Triads()

	targets, ok := functionTransitions[last]
	if !ok {
		return ca.context.AllChords()
	}

	candidates := make([]ExtendedChord, 0)
	for _, target := range targets {
		for _, triad := range triads {
			if triad.Function == target {
				candidates = append(candidates, ca.context.GenerateExtensions(triad)...)
				break
			}
		}
	}
	return candidates
}

// AnalyzeVoiceLeading compares the notes of two chords position by position.
// Common tones count 2 smooth movements, moves of up to a whole tone count 1.
// The score is normalised by the size of from, so swapping the arguments can
// change the result.
func AnalyzeVoiceLeading(from, to ExtendedChord) VoiceLeading {
	pairs := min(len(from.Notes), len(to.Notes))

	smooth, total := 0, 0
	up, down, stayed := 0, 0, 0
	for i := 0; i < pairs; i++ {
		a, errA := chroma.PitchClassOf(from.Notes[i])
		b, errB := chroma.PitchClassOf(to.Notes[i])
		if errA != nil || errB != nil {
			continue
		}

		if a == b {
			smooth += 2
			stayed++
			continue
		}

		distance := chroma.CircularDistance(a, b)
		if distance <= 2 {
			smooth++
		}
		total += distance

		if d := int(chroma.Normalize(int(b) - int(a))); d <= 6 {
			up++
		} else {
			down++
		}
	}

	score := float64(max(0, 50-total*5))
	if len(from.Notes) > 0 {
		score += float64(smooth) / float64(len(from.Notes)) * 50
	}

	return VoiceLeading{
		Quality:         common.ClampPercent(score),
		SmoothMovements: smooth,
		TotalMovement:   total,
		Movement:        classifyMovement(up, down, stayed),
	}
}

func classifyMovement(up, down, stayed int) MovementType {
	switch {
	case up > 0 && down > 0:
		return MovementContrary
	case stayed > 0 && up+down > 0:
		return MovementOblique
	case up+down > 0:
		return MovementParallel
	default:
		return MovementSmooth
	}
}
