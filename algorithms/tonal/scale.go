package tonal

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
)

// ErrInvalidScaleID is returned for a scale id that is not in the catalog.
// Lookups never fall back to the major scale.
var ErrInvalidScaleID = errors.New("invalid scale id")

// HarmonicFunction labels the role of a scale degree
type HarmonicFunction string

const (
	FunctionTonic       HarmonicFunction = "tonic"
	FunctionSupertonic  HarmonicFunction = "supertonic"
	FunctionMediant     HarmonicFunction = "mediant"
	FunctionSubdominant HarmonicFunction = "subdominant"
	FunctionDominant    HarmonicFunction = "dominant"
	FunctionSubmediant  HarmonicFunction = "submediant"
	FunctionLeading     HarmonicFunction = "leading"
)

// TriadQuality is the quality of the triad built on a scale degree
type TriadQuality string

const (
	QualityMajor      TriadQuality = "major"
	QualityMinor      TriadQuality = "minor"
	QualityDiminished TriadQuality = "diminished"
	QualityAugmented  TriadQuality = "augmented"
)

// Scale is an ordered set of semitone intervals above a root
type Scale struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Intervals   []int  `json:"intervals"`
	Description string `json:"description"`
	Mood        string `json:"mood"`
}

// ScaleDegree describes one position of a scale
type ScaleDegree struct {
	Degree   int              `json:"degree"`
	Note     string           `json:"note"`
	Function HarmonicFunction `json:"function"`
	Quality  TriadQuality     `json:"quality"`
}

// ChordSuggestion is a scale-derived chord. Notes are sharp-spelled letters.
type ChordSuggestion struct {
	Name     string           `json:"name"`
	Notes    []string         `json:"notes"`
	Degree   int              `json:"degree"`
	Function HarmonicFunction `json:"function"`
	Quality  TriadQuality     `json:"quality"`
	Tension  string           `json:"tension,omitempty"`
}

// The catalog is a slice, not a map: key detection breaks ties by declaration order.
var scaleCatalog = []Scale{
	{ID: "major", Name: "Major", Intervals: []int{0, 2, 4, 5, 7, 9, 11},
		Description: "The Ionian mode: bright and stable, the reference point for Western harmony", Mood: "happy"},
	{ID: "minor", Name: "Natural Minor", Intervals: []int{0, 2, 3, 5, 7, 8, 10},
		Description: "The Aeolian mode: darker and introspective", Mood: "sad"},
	{ID: "dorian", Name: "Dorian", Intervals: []int{0, 2, 3, 5, 7, 9, 10},
		Description: "Minor with a raised sixth, common in jazz, funk and folk", Mood: "jazzy"},
	{ID: "phrygian", Name: "Phrygian", Intervals: []int{0, 1, 3, 5, 7, 8, 10},
		Description: "Minor with a flat second, heard in flamenco and metal", Mood: "exotic"},
	{ID: "lydian", Name: "Lydian", Intervals: []int{0, 2, 4, 6, 7, 9, 11},
		Description: "Major with a raised fourth, floating and cinematic", Mood: "dreamy"},
	{ID: "mixolydian", Name: "Mixolydian", Intervals: []int{0, 2, 4, 5, 7, 9, 10},
		Description: "Major with a flat seventh, the sound of rock and blues riffs", Mood: "bluesy"},
	{ID: "locrian", Name: "Locrian", Intervals: []int{0, 1, 3, 5, 6, 8, 10},
		Description: "Diminished tonic and flat second, unstable and tense", Mood: "dark"},
	{ID: "harmonic_minor", Name: "Harmonic Minor", Intervals: []int{0, 2, 3, 5, 7, 8, 11},
		Description: "Natural minor with a raised seventh that creates a strong leading tone", Mood: "dramatic"},
	{ID: "melodic_minor", Name: "Melodic Minor", Intervals: []int{0, 2, 3, 5, 7, 9, 11},
		Description: "Minor with raised sixth and seventh, smooth ascending lines", Mood: "sophisticated"},
	{ID: "pentatonic_major", Name: "Major Pentatonic", Intervals: []int{0, 2, 4, 7, 9},
		Description: "Five notes without semitones; almost impossible to sound wrong", Mood: "bright"},
	{ID: "pentatonic_minor", Name: "Minor Pentatonic", Intervals: []int{0, 3, 5, 7, 10},
		Description: "The five-note backbone of rock and blues soloing", Mood: "soulful"},
	{ID: "blues", Name: "Blues", Intervals: []int{0, 3, 5, 6, 7, 10},
		Description: "Minor pentatonic plus the flat fifth blue note", Mood: "bluesy"},
}

var degreeFunctions = [7]HarmonicFunction{
	FunctionTonic, FunctionSupertonic, FunctionMediant, FunctionSubdominant,
	FunctionDominant, FunctionSubmediant, FunctionLeading,
}

var majorDegreeQualities = [7]TriadQuality{
	QualityMajor, QualityMinor, QualityMinor, QualityMajor, QualityMajor, QualityMinor, QualityDiminished,
}

// Every scale other than major uses the natural-minor template
var minorDegreeQualities = [7]TriadQuality{
	QualityMinor, QualityDiminished, QualityMajor, QualityMinor, QualityMinor, QualityMajor, QualityMajor,
}

// Scales returns a copy of the catalog in declaration order
func Scales() []Scale {
	scales := make([]Scale, len(scaleCatalog))
	for i, s := range scaleCatalog {
		scales[i] = s.clone()
	}
	return scales
}

// ScaleByID looks up a catalog scale
func ScaleByID(id string) (Scale, error) {
	for _, s := range scaleCatalog {
		if s.ID == id {
			return s.clone(), nil
		}
	}
	return Scale{}, fmt.Errorf("%w: %q", ErrInvalidScaleID, id)
}

// IsMajor reports whether the degree tables use the major template
func (s Scale) IsMajor() bool {
	return s.ID == "major"
}

func (s Scale) clone() Scale {
	c := s
	c.Intervals = append([]int(nil), s.Intervals...)
	return c
}

// ScaleContext binds a scale to a root. It is immutable; build a new one when
// either input changes.
type ScaleContext struct {
	scale Scale
	root  chroma.PitchClass
	notes []chroma.PitchClass
}

// NewScaleContext resolves a root letter and a catalog scale id
func NewScaleContext(root string, scaleID string) (*ScaleContext, error) {
	pc, err := chroma.PitchClassOf(root)
	if err != nil {
		return nil, fmt.Errorf("scale root: %w", err)
	}

	scale, err := ScaleByID(scaleID)
	if err != nil {
		return nil, err
	}

	return NewScaleContextFromScale(pc, scale), nil
}

// NewScaleContextFromScale builds a context from an already resolved root and scale
func NewScaleContextFromScale(root chroma.PitchClass, scale Scale) *ScaleContext {
	root = chroma.Normalize(int(root))

	notes := make([]chroma.PitchClass, len(scale.Intervals))
	for i, interval := range scale.Intervals {
		notes[i] = chroma.Normalize(int(root) + interval)
	}

	return &ScaleContext{
		scale: scale.clone(),
		root:  root,
		notes: notes,
	}
}

// Scale returns the bound scale
func (sc *ScaleContext) Scale() Scale {
	return sc.scale.clone()
}

// Root returns the root pitch class
func (sc *ScaleContext) Root() chroma.PitchClass {
	return sc.root
}

// RootName returns the sharp-spelled root letter
func (sc *ScaleContext) RootName() string {
	return chroma.LetterNameOf(sc.root)
}

// KeyName renders the context as "C major" or "A# dorian"
func (sc *ScaleContext) KeyName() string {
	return KeyName(sc.root, sc.scale.ID)
}

// Size is the number of scale degrees
func (sc *ScaleContext) Size() int {
	return len(sc.notes)
}

// PitchClasses returns the scale notes as pitch classes, one per degree
func (sc *ScaleContext) PitchClasses() []chroma.PitchClass {
	return append([]chroma.PitchClass(nil), sc.notes...)
}

// ScaleNotes returns the scale notes as letters, one per degree
func (sc *ScaleContext) ScaleNotes() []string {
	names := make([]string, len(sc.notes))
	for i, pc := range sc.notes {
		names[i] = chroma.LetterNameOf(pc)
	}
	return names
}

// NoteAt returns the letter of the scale note at a zero-based index, wrapping around the scale
func (sc *ScaleContext) NoteAt(index int) string {
	n := len(sc.notes)
	return chroma.LetterNameOf(sc.notes[((index%n)+n)%n])
}

// Contains reports membership of a pitch class
func (sc *ScaleContext) Contains(pc chroma.PitchClass) bool {
	pc = chroma.Normalize(int(pc))
	for _, note := range sc.notes {
		if note == pc {
			return true
		}
	}
	return false
}

// IsInScale reports whether a letter name belongs to the scale
func (sc *ScaleContext) IsInScale(letter string) (bool, error) {
	pc, err := chroma.PitchClassOf(letter)
	if err != nil {
		return false, err
	}
	return sc.Contains(pc), nil
}

// ClosestScaleNote returns the letter unchanged (sharp-spelled) when it is in the
// scale, otherwise the scale note at the smallest circular distance. Ties go to
// the lower degree.
func (sc *ScaleContext) ClosestScaleNote(letter string) (string, error) {
	pc, err := chroma.PitchClassOf(letter)
	if err != nil {
		return "", err
	}
	return chroma.LetterNameOf(sc.closest(pc)), nil
}

func (sc *ScaleContext) closest(pc chroma.PitchClass) chroma.PitchClass {
	if sc.Contains(pc) {
		return pc
	}

	best := sc.notes[0]
	bestDistance := chroma.CircularDistance(pc, best)
	for _, note := range sc.notes[1:] {
		if d := chroma.CircularDistance(pc, note); d < bestDistance {
			best = note
			bestDistance = d
		}
	}
	return best
}

// DegreeOf returns the 1-based degree of a letter, or 0 when it is not in the scale
func (sc *ScaleContext) DegreeOf(letter string) (int, error) {
	pc, err := chroma.PitchClassOf(letter)
	if err != nil {
		return 0, err
	}
	for i, note := range sc.notes {
		if note == pc {
			return i + 1, nil
		}
	}
	return 0, nil
}

// Degrees labels every scale degree from the fixed 7-entry tables
func (sc *ScaleContext) Degrees() []ScaleDegree {
	qualities := minorDegreeQualities
	if sc.scale.IsMajor() {
		qualities = majorDegreeQualities
	}

	count := min(len(sc.notes), len(degreeFunctions))
	degrees := make([]ScaleDegree, count)
	for i := 0; i < count; i++ {
		degrees[i] = ScaleDegree{
			Degree:   i + 1,
			Note:     chroma.LetterNameOf(sc.notes[i]),
			Function: degreeFunctions[i],
			Quality:  qualities[i],
		}
	}
	return degrees
}

// Triad builds the triad on a 1-based degree from scale indices i, i+2, i+4
func (sc *ScaleContext) Triad(degree int) (ChordSuggestion, bool) {
	degrees := sc.Degrees()
	if degree < 1 || degree > len(degrees) {
		return ChordSuggestion{}, false
	}

	d := degrees[degree-1]
	i := degree - 1
	return ChordSuggestion{
		Name:     ChordName(d.Note, d.Quality),
		Notes:    []string{sc.NoteAt(i), sc.NoteAt(i + 2), sc.NoteAt(i + 4)},
		Degree:   d.Degree,
		Function: d.Function,
		Quality:  d.Quality,
	}, true
}

// Triads returns the triad of every degree in degree order
func (sc *ScaleContext) Triads() []ChordSuggestion {
	degrees := sc.Degrees()
	triads := make([]ChordSuggestion, 0, len(degrees))
	for _, d := range degrees {
		if triad, ok := sc.Triad(d.Degree); ok {
			triads = append(triads, triad)
		}
	}
	return triads
}

// ChordSuggestions returns, per degree, the triad followed by its seventh chord
// when the scale has at least seven notes
func (sc *ScaleContext) ChordSuggestions() []ChordSuggestion {
	suggestions := make([]ChordSuggestion, 0, 2*len(sc.notes))
	for _, triad := range sc.Triads() {
		suggestions = append(suggestions, triad)

		if len(sc.notes) >= 7 {
			seventh := triad
			seventh.Name = triad.Name + "7"
			seventh.Notes = append(append([]string(nil), triad.Notes...), sc.NoteAt(triad.Degree-1+6))
			seventh.Tension = "7"
			suggestions = append(suggestions, seventh)
		}
	}
	return suggestions
}

// ChordName renders a root letter and triad quality as a chord symbol
func ChordName(root string, quality TriadQuality) string {
	switch quality {
	case QualityMinor:
		return root + "m"
	case QualityDiminished:
		return root + "dim"
	case QualityAugmented:
		return root + "aug"
	default:
		return root
	}
}

// KeyName renders a root and scale id as "C major"
func KeyName(root chroma.PitchClass, scaleID string) string {
	return fmt.Sprintf("%s %s", chroma.LetterNameOf(root), scaleID)
}
