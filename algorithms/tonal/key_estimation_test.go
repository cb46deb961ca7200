package tonal

import (
	"testing"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKey(t *testing.T) {
	tests := []struct {
		name       string
		letters    []string
		key        string
		confidence int
	}{
		{"empty", nil, "C major", 0},
		{"c major scale", []string{"C", "D", "E", "F", "G", "A", "B"}, "C major", 100},
		{"c major triad", []string{"C", "E", "G", "C"}, "C major", 100},
		{"ties keep the earliest root", []string{"A", "C", "E"}, "C major", 100},
		{"minor third", []string{"C", "Eb"}, "C minor", 100},
		{"g major letters match c lydian first", []string{"G", "A", "B", "C", "D", "E", "F#"}, "C lydian", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DetectKey(tt.letters)
			require.NoError(t, err)
			assert.Equal(t, tt.key, key.KeyName)
			assert.Equal(t, tt.confidence, key.Confidence)
		})
	}
}

func TestDetectKeyRejectsBadLetters(t *testing.T) {
	_, err := DetectKey([]string{"C", "Q"})
	assert.ErrorIs(t, err, chroma.ErrInvalidPitchName)
}

func TestRankKeys(t *testing.T) {
	ranked, err := RankKeys([]string{"C", "E", "G", "Bb"})
	require.NoError(t, err)
	require.Len(t, ranked, 12*len(Scales()))

	assert.Equal(t, "C mixolydian", ranked[0].KeyName)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i].Confidence, ranked[i-1].Confidence)
	}
}

func TestScaleConfidence(t *testing.T) {
	ctx := mustContext(t, "C", "major")

	confidence, err := ScaleConfidence(ctx, []string{"C", "C#", "D", "D#"})
	require.NoError(t, err)
	assert.Equal(t, 50, confidence)

	confidence, err = ScaleConfidence(ctx, []string{"Db", "C#"})
	require.NoError(t, err)
	assert.Equal(t, 0, confidence, "duplicates count once")
}

func TestClassifyKeyTransition(t *testing.T) {
	c := chroma.PitchClass(0)

	tests := []struct {
		to       int
		expected string
	}{
		{7, TransitionDominant},
		{5, TransitionSubdominant},
		{9, TransitionRelative},
		{3, TransitionRelative},
		{2, TransitionDirect},
		{0, TransitionDirect},
		{19, TransitionDominant},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyKeyTransition(c, chroma.PitchClass(tt.to)), "to %d", tt.to)
	}
}

func TestRelatedKeys(t *testing.T) {
	assert.Equal(t, chroma.PitchClass(9), GetRelativeKey(0, true))
	assert.Equal(t, chroma.PitchClass(0), GetRelativeKey(9, false))
	assert.Equal(t, chroma.PitchClass(2), GetDominantKey(7))
	assert.Equal(t, chroma.PitchClass(8), GetSubdominantKey(3))
}
