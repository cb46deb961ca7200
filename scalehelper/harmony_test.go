package scalehelper

import (
	"testing"

	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHarmonyEmpty(t *testing.T) {
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(nil)
	require.NoError(t, err)

	assert.Empty(t, analysis.ChordProgressions)
	assert.Empty(t, analysis.Modulations)
	assert.Empty(t, analysis.Tensions)
	assert.NotNil(t, analysis.NextChords)
	assert.Equal(t, 0, analysis.Tonicity)
}

func TestAnalyzeHarmonyTensions(t *testing.T) {
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(notes(0, "C4", 1, "Db4", 2, "F#4"))
	require.NoError(t, err)

	assert.Equal(t, 33, analysis.Tonicity)
	assert.Equal(t, []Tension{
		{Position: 1, Note: "Db4", ResolutionNote: "C"},
		{Position: 2, Note: "F#4", ResolutionNote: "F"},
	}, analysis.Tensions)
	assert.Empty(t, analysis.ChordProgressions, "no window holds two notes of a triad")
}

func TestAnalyzeHarmonyProgression(t *testing.T) {
	events := notes(
		0, "C4", 1, "E4", 2, "G4",
		4, "F4", 5, "C5",
		8, "G4", 9, "D5",
		12, "C4", 13, "E4", 14, "G4",
	)

	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(events)
	require.NoError(t, err)

	require.Len(t, analysis.ChordProgressions, 3)
	strengths := make([]int, 0, 3)
	for _, p := range analysis.ChordProgressions {
		strengths = append(strengths, p.Strength)
	}
	assert.Equal(t, []int{75, 85, 95}, strengths)
	assert.Equal(t, [2]string{"G", "C"}, analysis.ChordProgressions[2].ChordNames)

	assert.Equal(t, 100, analysis.Tonicity)
	assert.Empty(t, analysis.Modulations)
	assert.Empty(t, analysis.Tensions)
}

func TestAnalyzeHarmonyBreaksProgressionOnGaps(t *testing.T) {
	events := notes(0, "C4", 1, "E4", 8, "G4", 9, "B4")

	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(events)
	require.NoError(t, err)
	assert.Empty(t, analysis.ChordProgressions)
}

func TestAnalyzeHarmonyModulation(t *testing.T) {
	events := notes(0, "C4", 1, "E4", 2, "G4", 8, "E4", 9, "G#4", 10, "B4")

	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(events)
	require.NoError(t, err)

	assert.Equal(t, []Modulation{{
		FromKey:  "C major",
		ToKey:    "C# minor",
		Position: 8,
		Type:     tonal.TransitionDirect,
	}}, analysis.Modulations)
	assert.Equal(t, 83, analysis.Tonicity)
}

func TestAnalyzeHarmonyIdentifiesTheFirstMatchingDegree(t *testing.T) {
	// F and A also belong to ii, which is tried before IV
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(notes(0, "C4", 1, "E4", 4, "F4", 5, "A4"))
	require.NoError(t, err)

	require.Len(t, analysis.ChordProgressions, 1)
	assert.Equal(t, [2]string{"C", "Dm"}, analysis.ChordProgressions[0].ChordNames)
}

func TestAnalyzeHarmonySuggestsNextChords(t *testing.T) {
	analysis, err := newAnalyzer(t, "C", "major").AnalyzeHarmony(notes(0, "G3", 1, "D4"))
	require.NoError(t, err)

	names := make([]string, 0)
	for _, c := range analysis.NextChords {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Asus2", "Am", "Am7", "Am9", "Aadd9"}, names)
}

func TestGroupLetters(t *testing.T) {
	tests := []struct {
		name     string
		notes    []pattern.NoteEvent
		expected []letterWindow
	}{
		{
			"empty window skipped",
			notes(0, "C4", 1, "C5", 3, "E4", 9, "G4"),
			[]letterWindow{{index: 0, letters: []string{"C", "E"}}, {index: 2, letters: []string{"G"}}},
		},
		{
			"notes far apart",
			notes(0, "C4", pattern.MaxStep, "E4"),
			[]letterWindow{{index: 0, letters: []string{"C"}}, {index: pattern.MaxStep / 4, letters: []string{"E"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseNotes(tt.notes)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, groupLetters(parsed, 4))
		})
	}
}

func TestAnalyzeHarmonyNotesFarApart(t *testing.T) {
	a := newAnalyzer(t, "C", "major")

	analysis, err := a.AnalyzeHarmony(notes(0, "C4", 1, "E4", 2, "G4", pattern.MaxStep-2, "F4", pattern.MaxStep-1, "A4", pattern.MaxStep, "C5"))
	require.NoError(t, err)
	assert.Empty(t, analysis.ChordProgressions, "distant windows are not adjacent")
	assert.Empty(t, analysis.Modulations)
	assert.Equal(t, 100, analysis.Tonicity)

	_, err = a.AnalyzeHarmony(notes(0, "C4", 8_388_608, "E4"))
	assert.ErrorIs(t, err, pattern.ErrInvalidNote)
}
