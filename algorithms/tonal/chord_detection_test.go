package tonal

import (
	"testing"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifyChord(t *testing.T) {
	detector := NewChordDetector(mustContext(t, "C", "major"))

	tests := []struct {
		name    string
		letters []string
		chord   string
		matched bool
	}{
		{"full triad", []string{"C", "E", "G"}, "C", true},
		{"two of three", []string{"E", "C"}, "C", true},
		{"first degree wins", []string{"G", "B", "D"}, "Em", true},
		{"supertonic before subdominant", []string{"F", "A"}, "Dm", true},
		{"subdominant", []string{"F", "C"}, "F", true},
		{"single note", []string{"C"}, "", false},
		{"no scale tones", []string{"C#", "D#"}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chord, ok, err := detector.IdentifyChord(tt.letters)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.chord, chord.Name)
		})
	}

	_, _, err := detector.IdentifyChord([]string{"C", "?"})
	assert.ErrorIs(t, err, chroma.ErrInvalidPitchName)
}

func TestLabelProgression(t *testing.T) {
	ctx := mustContext(t, "C", "major")
	triad := func(degree int) ChordSuggestion {
		c, ok := ctx.Triad(degree)
		require.True(t, ok)
		return c
	}

	authentic := LabelProgression(triad(5), triad(1))
	assert.Equal(t, "Authentic cadence (V → I)", authentic.Description)
	assert.Equal(t, 95, authentic.Strength)
	assert.Equal(t, [2]string{"G", "C"}, authentic.ChordNames)
	assert.Equal(t, [2]int{5, 1}, authentic.Degrees)

	unnamed := LabelProgression(triad(2), triad(3))
	assert.Equal(t, "II → III", unnamed.Description)
	assert.Equal(t, DefaultProgressionStrength, unnamed.Strength)
}

func TestChordProgressionAnalyzer(t *testing.T) {
	ctx := mustContext(t, "C", "major")
	analyzer := NewChordProgressionAnalyzer()
	assert.Empty(t, analyzer.AnalyzeProgression())

	for _, degree := range []int{1, 4, 5, 1} {
		c, _ := ctx.Triad(degree)
		analyzer.AddChord(c)
	}

	progressions := analyzer.AnalyzeProgression()
	require.Len(t, progressions, 3)
	assert.Equal(t, 75, progressions[0].Strength)
	assert.Equal(t, 85, progressions[1].Strength)
	assert.Equal(t, 95, progressions[2].Strength)
}

func TestRomanNumeral(t *testing.T) {
	assert.Equal(t, "I", RomanNumeral(1))
	assert.Equal(t, "VII", RomanNumeral(7))
	assert.Equal(t, "?", RomanNumeral(0))
	assert.Equal(t, "?", RomanNumeral(8))
}
