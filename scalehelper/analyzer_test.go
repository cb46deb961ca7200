package scalehelper

import (
	"runtime"
	"testing"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/pattern"
	"github.com/RyanBlaney/sonido-armonia/scalehelper/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T, root, scale string) *Analyzer {
	t.Helper()
	ctx, err := tonal.NewScaleContext(root, scale)
	require.NoError(t, err)
	return NewAnalyzer(ctx, nil)
}

// notes builds active events from (step, pitch) pairs
func notes(pairs ...any) []pattern.NoteEvent {
	events := make([]pattern.NoteEvent, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		events = append(events, pattern.NoteEvent{
			Step:     pairs[i].(int),
			Pitch:    pairs[i+1].(string),
			Velocity: 80,
			Duration: 1,
			Active:   true,
		})
	}
	return events
}

func TestAnalyzeSequenceEmpty(t *testing.T) {
	analysis, err := newAnalyzer(t, "D", "dorian").AnalyzeSequence(nil)
	require.NoError(t, err)

	assert.Equal(t, "C major", analysis.KeyName)
	assert.Equal(t, 0, analysis.Confidence)
	assert.Equal(t, MoodNeutral, analysis.Mood)
	assert.Equal(t, ComplexityBeginner, analysis.Complexity)
	assert.Equal(t, []string{"Add some notes to the grid to start the analysis"}, analysis.Suggestions)
	assert.Empty(t, analysis.Warnings)
}

func TestAnalyzeSequenceTonicTriad(t *testing.T) {
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeSequence(notes(0, "C4", 4, "E4", 8, "G4", 12, "C5"))
	require.NoError(t, err)

	assert.Equal(t, "C", analysis.DetectedRoot)
	assert.Equal(t, "major", analysis.DetectedScale)
	assert.Equal(t, "C major", analysis.KeyName)
	assert.Equal(t, 100, analysis.Confidence)
	assert.Equal(t, 4, analysis.UniqueNotes)
	assert.Equal(t, 1, analysis.RhythmicComplexity)
	assert.Equal(t, ComplexityBeginner, analysis.Complexity)
	assert.Equal(t, "happy", analysis.Mood)
	assert.Equal(t, 4, analysis.Rhythm.PeriodSteps)

	assert.Equal(t, []string{"Mix short and long notes to add rhythmic variety"}, analysis.Suggestions)
	assert.Empty(t, analysis.Warnings)
}

func TestAnalyzeSequenceWarnsAboutOutOfScaleNotes(t *testing.T) {
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeSequence(notes(0, "C4", 1, "Db4", 2, "F#4"))
	require.NoError(t, err)

	assert.Equal(t, []string{"67% of the notes are outside C major; check they are intentional"}, analysis.Warnings)
	assert.Equal(t, "C locrian", analysis.KeyName, "the detected key ignores the assumed scale")
}

func TestAnalyzeSequenceWarnsAboutWideRange(t *testing.T) {
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeSequence(notes(0, "C2", 2, "G4", 4, "C5"))
	require.NoError(t, err)

	assert.Contains(t, analysis.Warnings,
		"The melody spans 36 semitones, more than two octaves, and may be hard to play")
}

func TestAnalyzeSequenceIgnoresInactiveNotes(t *testing.T) {
	events := notes(0, "C4", 4, "E4")
	events = append(events, pattern.NoteEvent{Step: 2, Pitch: "not a pitch", Active: false})

	analysis, err := newAnalyzer(t, "C", "major").AnalyzeSequence(events)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.UniqueNotes)
}

func TestAnalyzeSequenceRejectsBadPitch(t *testing.T) {
	_, err := newAnalyzer(t, "C", "major").AnalyzeSequence(notes(0, "C4", 1, "Q4"))
	assert.ErrorIs(t, err, chroma.ErrInvalidPitchName)
	assert.ErrorContains(t, err, "note 1")
}

func TestAnalyzeSequenceStepBounds(t *testing.T) {
	tests := []struct {
		name     string
		events   []pattern.NoteEvent
		expected error
	}{
		{"negative step", notes(-1, "C4", 4, "E4"), pattern.ErrInvalidNote},
		{"step past the grid", notes(0, "C4", pattern.MaxStep+1, "E4"), pattern.ErrInvalidNote},
		{"huge step", notes(0, "C4", 8_388_608, "E4"), pattern.ErrInvalidNote},
		{"zero duration", []pattern.NoteEvent{{Step: 0, Pitch: "C4", Velocity: 80, Active: true}}, pattern.ErrInvalidNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAnalyzer(t, "C", "major").AnalyzeSequence(tt.events)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestAnalyzeNotesFarApartStaysSmall(t *testing.T) {
	a := newAnalyzer(t, "C", "major")
	events := notes(0, "C4", pattern.MaxStep, "E4")

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	report, err := a.Analyze(events)
	runtime.ReadMemStats(&after)
	require.NoError(t, err)

	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(4<<20), "allocation follows the note count")
	assert.Zero(t, report.Musical.Rhythm.PeriodSteps, "the onset grid is longer than the period search")
	assert.InDelta(t, 2.0/float64(pattern.MaxStep+1), report.Musical.Rhythm.Density, 1e-12)
}

func TestMood(t *testing.T) {
	a := newAnalyzer(t, "C", "major")

	tests := []struct {
		name     string
		velocity float64
		density  float64
		scale    string
		expected string
	}{
		{"loud and dense", 110, 0.8, "major", MoodEnergetic},
		{"quiet minor", 50, 0.1, "minor", MoodMelancholic},
		{"quiet locrian", 50, 0.1, "locrian", MoodMelancholic},
		{"quiet major", 50, 0.1, "major", MoodCalm},
		{"busy", 80, 0.9, "major", MoodBusy},
		{"loud but sparse", 110, 0.2, "lydian", "dreamy"},
		{"scale mood", 80, 0.1, "blues", "bluesy"},
		{"unknown scale", 80, 0.1, "bebop", MoodNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.mood(tt.velocity, tt.density, tt.scale))
		})
	}
}

func TestComplexityTag(t *testing.T) {
	a := newAnalyzer(t, "C", "major")

	assert.Equal(t, ComplexityBeginner, a.complexityTag(8))
	assert.Equal(t, ComplexityIntermediate, a.complexityTag(9))
	assert.Equal(t, ComplexityIntermediate, a.complexityTag(15))
	assert.Equal(t, ComplexityAdvanced, a.complexityTag(16))
}

func TestCustomConfig(t *testing.T) {
	ctx, err := tonal.NewScaleContext("C", "major")
	require.NoError(t, err)

	cfg := &config.AnalysisConfig{
		Complexity: &config.ComplexityConfig{BeginnerMax: 1, IntermediateMax: 2},
	}
	analysis, err := NewAnalyzer(ctx, cfg).AnalyzeSequence(notes(0, "C4", 4, "E4", 8, "G4"))
	require.NoError(t, err)
	assert.Equal(t, ComplexityAdvanced, analysis.Complexity)
}

func TestAnalyze(t *testing.T) {
	report, err := newAnalyzer(t, "C", "major").Analyze(notes(0, "C4", 4, "E4", 8, "G4", 12, "C5"))
	require.NoError(t, err)

	require.NotNil(t, report.Musical)
	require.NotNil(t, report.Harmonic)
	require.NotNil(t, report.Melodic)
	assert.Equal(t, 100, report.Harmonic.Tonicity)
	assert.Equal(t, ContourAscending, report.Melodic.Contour)
	require.Len(t, report.Tips, 2)
	assert.Equal(t, "Start with the root", report.Tips[0].Title)
	assert.Equal(t, "About C Major", report.Tips[1].Title)
}
