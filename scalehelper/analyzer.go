package scalehelper

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
	"github.com/RyanBlaney/sonido-armonia/algorithms/temporal"
	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/pattern"
	"github.com/RyanBlaney/sonido-armonia/scalehelper/config"
)

// Complexity tags
const (
	ComplexityBeginner     = "beginner"
	ComplexityIntermediate = "intermediate"
	ComplexityAdvanced     = "advanced"
)

// Mood tags produced by the velocity/density rules. Otherwise the detected
// scale's own mood is used.
const (
	MoodNeutral     = "neutral"
	MoodEnergetic   = "energetic"
	MoodMelancholic = "melancholic"
	MoodCalm        = "calm"
	MoodBusy        = "busy"
)

// MusicalAnalysis is the key, mood and feedback summary of a sequence
type MusicalAnalysis struct {
	DetectedRoot       string                 `json:"detected_root"`
	DetectedScale      string                 `json:"detected_scale"`
	KeyName            string                 `json:"key_name"`
	Confidence         int                    `json:"confidence"` // 0-100
	Mood               string                 `json:"mood"`
	Complexity         string                 `json:"complexity"`
	Suggestions        []string               `json:"suggestions"`
	Warnings           []string               `json:"warnings"`
	UniqueNotes        int                    `json:"unique_notes"`
	RhythmicComplexity int                    `json:"rhythmic_complexity"`
	Rhythm             temporal.RhythmProfile `json:"rhythm"`
}

// Report bundles every analysis of one sequence
type Report struct {
	Musical  *MusicalAnalysis  `json:"musical"`
	Harmonic *HarmonicAnalysis `json:"harmonic"`
	Melodic  *MelodicAnalysis  `json:"melodic"`
	Tips     []Tip             `json:"tips"`
}

// Analyzer analyzes note sequences against an assumed scale. It keeps no
// state between calls and is safe for concurrent use.
type Analyzer struct {
	context  *tonal.ScaleContext
	config   *config.AnalysisConfig
	detector *tonal.ChordDetector
	rhythm   *temporal.RhythmAnalyzer
	logger   logging.Logger
}

// NewAnalyzer creates an analyzer for a scale context. A nil config uses the defaults.
func NewAnalyzer(ctx *tonal.ScaleContext, cfg *config.AnalysisConfig) *Analyzer {
	cfg = cfg.WithDefaults()

	logger := logging.WithFields(logging.Fields{
		"component": "sequence_analyzer",
		"key":       ctx.KeyName(),
	})

	rhythm := temporal.NewRhythmAnalyzerWithParams(temporal.RhythmParams{
		StepsPerBeat:      4,
		SyncopationBonus:  5,
		MinPeriodStrength: 0.5,
		MinPeriodLag:      2,
		MaxGridSteps:      cfg.Rhythm.MaxGridSteps,
	})

	return &Analyzer{
		context:  ctx,
		config:   cfg,
		detector: tonal.NewChordDetector(ctx),
		rhythm:   rhythm,
		logger:   logger,
	}
}

// Context returns the scale the analyzer measures against
func (a *Analyzer) Context() *tonal.ScaleContext {
	return a.context
}

// NewAdvisor creates a chord advisor over the analyzer's scale with the configured thresholds
func (a *Analyzer) NewAdvisor() *tonal.ChordAdvisor {
	return tonal.NewChordAdvisorWithParams(a.context, tonal.ChordAdvisorParams{
		HistorySize: a.config.Advisor.HistorySize,
		MinQuality:  a.config.Advisor.MinQuality,
	})
}

// Analyze runs the musical, harmonic and melodic analyses plus tips
func (a *Analyzer) Analyze(notes []pattern.NoteEvent) (*Report, error) {
	musical, err := a.AnalyzeSequence(notes)
	if err != nil {
		return nil, err
	}
	harmonic, err := a.AnalyzeHarmony(notes)
	if err != nil {
		return nil, err
	}
	melodic, err := a.AnalyzeMelody(notes)
	if err != nil {
		return nil, err
	}
	tips, err := PedagogicalTips(musical)
	if err != nil {
		return nil, err
	}

	return &Report{
		Musical:  musical,
		Harmonic: harmonic,
		Melodic:  melodic,
		Tips:     tips,
	}, nil
}

// AnalyzeSequence detects the key of the sequence and scores its complexity and mood
func (a *Analyzer) AnalyzeSequence(notes []pattern.NoteEvent) (*MusicalAnalysis, error) {
	parsed, err := parseNotes(notes)
	if err != nil {
		return nil, err
	}

	logger := a.logger.WithFields(logging.Fields{
		"function": "AnalyzeSequence",
		"notes":    len(parsed),
	})

	if len(parsed) == 0 {
		logger.Debug("Empty sequence, returning placeholder analysis")
		return emptyMusicalAnalysis(), nil
	}

	key, err := tonal.DetectKey(distinctLetters(parsed))
	if err != nil {
		return nil, err
	}

	steps := make([]int, len(parsed))
	durations := make([]int, len(parsed))
	velocities := make([]int, len(parsed))
	pitches := make(map[int]bool)
	for i, n := range parsed {
		steps[i] = n.Step
		durations[i] = n.Duration
		velocities[i] = n.Velocity
		pitches[n.midi] = true
	}
	rhythm := a.rhythm.Analyze(steps, durations)

	analysis := &MusicalAnalysis{
		DetectedRoot:       key.RootName,
		DetectedScale:      key.ScaleID,
		KeyName:            key.KeyName,
		Confidence:         key.Confidence,
		Suggestions:        []string{},
		Warnings:           []string{},
		UniqueNotes:        len(pitches),
		RhythmicComplexity: rhythm.Complexity,
		Rhythm:             rhythm,
	}
	analysis.Complexity = a.complexityTag(analysis.UniqueNotes + analysis.RhythmicComplexity)
	analysis.Mood = a.mood(common.MeanInts(velocities), rhythm.Density, key.ScaleID)

	melody := measureMelody(parsed)
	a.addFeedback(analysis, melody, a.outOfScalePercent(parsed))

	logger.Debug("Sequence analyzed", logging.Fields{
		"key":        analysis.KeyName,
		"confidence": analysis.Confidence,
		"complexity": analysis.Complexity,
		"mood":       analysis.Mood,
	})

	return analysis, nil
}

func emptyMusicalAnalysis() *MusicalAnalysis {
	return &MusicalAnalysis{
		DetectedRoot:  "C",
		DetectedScale: "major",
		KeyName:       "C major",
		Confidence:    0,
		Mood:          MoodNeutral,
		Complexity:    ComplexityBeginner,
		Suggestions:   []string{"Add some notes to the grid to start the analysis"},
		Warnings:      []string{},
	}
}

func (a *Analyzer) complexityTag(score int) string {
	switch {
	case score <= a.config.Complexity.BeginnerMax:
		return ComplexityBeginner
	case score <= a.config.Complexity.IntermediateMax:
		return ComplexityIntermediate
	default:
		return ComplexityAdvanced
	}
}

// mood applies the rule table in order; the first matching rule wins
func (a *Analyzer) mood(avgVelocity, density float64, scaleID string) string {
	cfg := a.config.Mood

	scaleMood := MoodNeutral
	if scale, err := tonal.ScaleByID(scaleID); err == nil {
		scaleMood = scale.Mood
	}

	switch {
	case avgVelocity > cfg.EnergeticVelocity && density > cfg.EnergeticDensity:
		return MoodEnergetic
	case avgVelocity < cfg.CalmVelocity && (scaleMood == "sad" || scaleMood == "dark"):
		return MoodMelancholic
	case avgVelocity < cfg.CalmVelocity:
		return MoodCalm
	case density > cfg.BusyDensity:
		return MoodBusy
	default:
		return scaleMood
	}
}

func (a *Analyzer) addFeedback(analysis *MusicalAnalysis, melody melodyMetrics, outOfScale int) {
	cfg := a.config.Feedback

	if analysis.Confidence < cfg.MinKeyConfidence {
		analysis.Suggestions = append(analysis.Suggestions,
			"Use more notes from a single scale to give the pattern a clearer key")
	}
	if analysis.Rhythm.UniqueDurations == 1 {
		analysis.Suggestions = append(analysis.Suggestions,
			"Mix short and long notes to add rhythmic variety")
	}
	if melody.rangeSemitones < cfg.MinRange {
		analysis.Suggestions = append(analysis.Suggestions,
			"Spread the melody over a wider range to make it more expressive")
	}
	if melody.stepwisePct > cfg.MaxStepwisePct {
		analysis.Suggestions = append(analysis.Suggestions,
			"Add a few leaps to contrast the stepwise motion")
	}

	if outOfScale > cfg.MaxOutOfScalePct {
		analysis.Warnings = append(analysis.Warnings, fmt.Sprintf(
			"%d%% of the notes are outside %s; check they are intentional", outOfScale, a.context.KeyName()))
	}
	if melody.rangeSemitones > cfg.MaxRange {
		analysis.Warnings = append(analysis.Warnings, fmt.Sprintf(
			"The melody spans %d semitones, more than two octaves, and may be hard to play", melody.rangeSemitones))
	}
}

func (a *Analyzer) outOfScalePercent(parsed []parsedNote) int {
	if len(parsed) == 0 {
		return 0
	}
	return 100 - a.tonicity(parsed)
}

// tonicity is the percentage of notes, not distinct letters, inside the scale
func (a *Analyzer) tonicity(parsed []parsedNote) int {
	inScale := 0
	for _, n := range parsed {
		if a.context.Contains(n.pc) {
			inScale++
		}
	}
	return common.Percent(inScale, len(parsed))
}

// parsedNote is an active note with its pitch resolved
type parsedNote struct {
	pattern.NoteEvent
	pc     chroma.PitchClass
	letter string
	midi   int
}

// parseNotes validates the events, drops inactive notes, resolves pitches
// and orders the rest by step
func parseNotes(notes []pattern.NoteEvent) ([]parsedNote, error) {
	if err := pattern.Validate(notes); err != nil {
		return nil, err
	}

	parsed := make([]parsedNote, 0, len(notes))
	for i, n := range pattern.ActiveNotes(notes) {
		midi, err := chroma.MIDIFromPitchName(n.Pitch)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		pc := chroma.Normalize(midi)
		parsed = append(parsed, parsedNote{
			NoteEvent: n,
			pc:        pc,
			letter:    chroma.LetterNameOf(pc),
			midi:      midi,
		})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Step < parsed[j].Step
	})
	return parsed, nil
}

func distinctLetters(parsed []parsedNote) []string {
	seen := make(map[string]bool)
	letters := make([]string, 0)
	for _, n := range parsed {
		if !seen[n.letter] {
			seen[n.letter] = true
			letters = append(letters, n.letter)
		}
	}
	return letters
}
