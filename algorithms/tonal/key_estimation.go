package tonal

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
)

// KeyCandidate represents a potential key with confidence
type KeyCandidate struct {
	Root       chroma.PitchClass `json:"root"`       // 0=C, 1=C#, ..., 11=B
	RootName   string            `json:"root_name"`  // sharp spelling
	ScaleID    string            `json:"scale_id"`   // catalog id
	KeyName    string            `json:"key_name"`   // e.g. "C major"
	Confidence int               `json:"confidence"` // percentage of input letters inside the scale
}

// Transition types between two detected keys
const (
	TransitionDominant    = "dominant"
	TransitionSubdominant = "subdominant"
	TransitionRelative    = "relative"
	TransitionDirect      = "direct"
)

// DetectKey brute-forces every root (C..B) against every catalog scale in
// declaration order. A candidate only replaces the current best when its
// confidence is strictly higher, so ties keep the earliest enumerated key.
// Empty input yields C major with zero confidence.
func DetectKey(letters []string) (KeyCandidate, error) {
	candidates, err := RankKeys(letters)
	if err != nil {
		return KeyCandidate{}, err
	}
	return candidates[0], nil
}

// RankKeys scores every root/scale pair and returns them best first. The
// order among equal confidences is the enumeration order.
func RankKeys(letters []string) ([]KeyCandidate, error) {
	input, err := distinctPitchClasses(letters)
	if err != nil {
		return nil, err
	}

	candidates := make([]KeyCandidate, 0, chroma.NumPitchClasses*len(scaleCatalog))
	for root := 0; root < chroma.NumPitchClasses; root++ {
		for _, scale := range scaleCatalog {
			ctx := NewScaleContextFromScale(chroma.PitchClass(root), scale)
			candidates = append(candidates, newKeyCandidate(ctx, matchConfidence(ctx, input)))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	return candidates, nil
}

// ScaleConfidence is the percentage of the distinct input letters inside a context
func ScaleConfidence(ctx *ScaleContext, letters []string) (int, error) {
	input, err := distinctPitchClasses(letters)
	if err != nil {
		return 0, err
	}
	return matchConfidence(ctx, input), nil
}

func matchConfidence(ctx *ScaleContext, input []chroma.PitchClass) int {
	if len(input) == 0 {
		return 0
	}

	matches := 0
	for _, pc := range input {
		if ctx.Contains(pc) {
			matches++
		}
	}
	return common.Percent(matches, len(input))
}

func newKeyCandidate(ctx *ScaleContext, confidence int) KeyCandidate {
	return KeyCandidate{
		Root:       ctx.Root(),
		RootName:   ctx.RootName(),
		ScaleID:    ctx.scale.ID,
		KeyName:    ctx.KeyName(),
		Confidence: confidence,
	}
}

func distinctPitchClasses(letters []string) ([]chroma.PitchClass, error) {
	seen := make(map[chroma.PitchClass]bool, len(letters))
	distinct := make([]chroma.PitchClass, 0, len(letters))
	for _, letter := range letters {
		pc, err := chroma.PitchClassOf(letter)
		if err != nil {
			return nil, fmt.Errorf("key detection: %w", err)
		}
		if !seen[pc] {
			seen[pc] = true
			distinct = append(distinct, pc)
		}
	}
	return distinct, nil
}

// ClassifyKeyTransition names a change of tonal centre by the rising semitone
// distance between the two roots
func ClassifyKeyTransition(from, to chroma.PitchClass) string {
	to = chroma.Normalize(int(to))
	switch to {
	case GetDominantKey(from):
		return TransitionDominant
	case GetSubdominantKey(from):
		return TransitionSubdominant
	case GetRelativeKey(from, true), GetRelativeKey(from, false):
		return TransitionRelative
	default:
		return TransitionDirect
	}
}

// GetRelativeKey returns the root of the relative key, a minor third below a
// major root or above a minor one
func GetRelativeKey(root chroma.PitchClass, major bool) chroma.PitchClass {
	if major {
		return chroma.Normalize(int(root) - 3)
	}
	return chroma.Normalize(int(root) + 3)
}

// GetDominantKey returns the root a fifth above
func GetDominantKey(root chroma.PitchClass) chroma.PitchClass {
	return chroma.Normalize(int(root) + 7)
}

// GetSubdominantKey returns the root a fifth below
func GetSubdominantKey(root chroma.PitchClass) chroma.PitchClass {
	return chroma.Normalize(int(root) - 7)
}
