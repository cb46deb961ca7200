package tonal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
)

// ProgressionTemplate labels a known degree-to-degree movement
type ProgressionTemplate struct {
	Description string `json:"description"`
	Strength    int    `json:"strength"` // 0-100
}

// DefaultProgressionStrength is used for degree pairs not in the table
const DefaultProgressionStrength = 50

// Keyed "d1-d2" by the degrees of the two chords
var progressionTemplates = map[string]ProgressionTemplate{
	"5-1": {Description: "Authentic cadence (V → I)", Strength: 95},
	"2-5": {Description: "Pre-dominant to dominant (ii → V)", Strength: 90},
	"4-5": {Description: "Subdominant to dominant (IV → V)", Strength: 85},
	"5-6": {Description: "Deceptive cadence (V → vi)", Strength: 85},
	"7-1": {Description: "Leading-tone resolution (vii° → I)", Strength: 85},
	"4-1": {Description: "Plagal cadence (IV → I)", Strength: 80},
	"1-4": {Description: "Tonic to subdominant (I → IV)", Strength: 75},
	"1-5": {Description: "Tonic to dominant (I → V)", Strength: 75},
	"6-2": {Description: "Circle of fifths motion (vi → ii)", Strength: 75},
	"1-6": {Description: "Tonic to relative minor (I → vi)", Strength: 70},
	"6-4": {Description: "Relative minor to subdominant (vi → IV)", Strength: 70},
	"3-6": {Description: "Mediant to submediant (iii → vi)", Strength: 65},
}

var romanNumerals = [7]string{"I", "II", "III", "IV", "V", "VI", "VII"}

// ChordProgression is a labelled pair of consecutive chords
type ChordProgression struct {
	ChordNames   [2]string    `json:"chord_names"`
	Degrees      [2]int       `json:"degrees"`
	Description  string       `json:"description"`
	Strength     int          `json:"strength"` // 0-100
	VoiceLeading VoiceLeading `json:"voice_leading"`
}

// ChordDetector matches sets of pitch letters against the triads of a scale
type ChordDetector struct {
	context *ScaleContext
	triads  []ChordSuggestion
}

// NewChordDetector creates a detector for the triads of a scale context
func NewChordDetector(ctx *ScaleContext) *ChordDetector {
	return &ChordDetector{
		context: ctx,
		triads:  ctx.Triads(),
	}
}

// IdentifyChord returns the first scale triad, in degree order, with at least
// two of its three notes present among the letters
func (cd *ChordDetector) IdentifyChord(letters []string) (ChordSuggestion, bool, error) {
	present := make(map[chroma.PitchClass]bool, len(letters))
	for _, letter := range letters {
		pc, err := chroma.PitchClassOf(letter)
		if err != nil {
			return ChordSuggestion{}, false, fmt.Errorf("chord identification: %w", err)
		}
		present[pc] = true
	}

	for _, triad := range cd.triads {
		matches := 0
		for _, note := range triad.Notes {
			pc, _ := chroma.PitchClassOf(note)
			if present[pc] {
				matches++
			}
		}
		if matches >= 2 {
			return cloneSuggestion(triad), true, nil
		}
	}

	return ChordSuggestion{}, false, nil
}

// LabelProgression describes the movement between two chords by their degrees
func LabelProgression(from, to ChordSuggestion) ChordProgression {
	key := fmt.Sprintf("%d-%d", from.Degree, to.Degree)

	template, ok := progressionTemplates[key]
	if !ok {
		template = ProgressionTemplate{
			Description: fmt.Sprintf("%s → %s", RomanNumeral(from.Degree), RomanNumeral(to.Degree)),
			Strength:    DefaultProgressionStrength,
		}
	}

	return ChordProgression{
		ChordNames:   [2]string{from.Name, to.Name},
		Degrees:      [2]int{from.Degree, to.Degree},
		Description:  template.Description,
		Strength:     template.Strength,
		VoiceLeading: AnalyzeVoiceLeading(Extend(from), Extend(to)),
	}
}

// RomanNumeral renders a 1-based degree, or "?" when out of range
func RomanNumeral(degree int) string {
	if degree < 1 || degree > len(romanNumerals) {
		return "?"
	}
	return romanNumerals[degree-1]
}

// ChordProgressionAnalyzer accumulates identified chords and labels each
// adjacent pair
type ChordProgressionAnalyzer struct {
	chords []ChordSuggestion
}

// NewChordProgressionAnalyzer creates an empty progression analyzer
func NewChordProgressionAnalyzer() *ChordProgressionAnalyzer {
	return &ChordProgressionAnalyzer{
		chords: make([]ChordSuggestion, 0),
	}
}

// AddChord appends a chord to the progression
func (cpa *ChordProgressionAnalyzer) AddChord(chord ChordSuggestion) {
	cpa.chords = append(cpa.chords, chord)
}

// AnalyzeProgression labels every adjacent pair of chords
func (cpa *ChordProgressionAnalyzer) AnalyzeProgression() []ChordProgression {
	progressions := make([]ChordProgression, 0)
	for i := 1; i < len(cpa.chords); i++ {
		progressions = append(progressions, LabelProgression(cpa.chords[i-1], cpa.chords[i]))
	}
	return progressions
}
