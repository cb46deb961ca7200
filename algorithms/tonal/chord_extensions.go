package tonal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownChord is returned when a chord symbol is not one of the scale's chords
var ErrUnknownChord = errors.New("unknown chord")

// Voicing describes how chord tones are spread across octaves
type Voicing string

const (
	VoicingClose Voicing = "close"
	VoicingOpen  Voicing = "open"
	VoicingDrop2 Voicing = "drop2"
	VoicingDrop3 Voicing = "drop3"
)

// Complexity ranks how demanding a chord is to hear and play
type Complexity string

const (
	ComplexityBasic        Complexity = "basic"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// ExtendedChord is a scale chord annotated with extension metadata
type ExtendedChord struct {
	ChordSuggestion
	Extensions    []string   `json:"extensions"`
	Substitutions []string   `json:"substitutions"`
	Voicing       Voicing    `json:"voicing"`
	Complexity    Complexity `json:"complexity"`
	GenreTags     []string   `json:"genre_tags"`
	BassNote      string     `json:"bass_note,omitempty"`
}

// Extend wraps a plain suggestion as a basic close-voiced chord
func Extend(base ChordSuggestion) ExtendedChord {
	return ExtendedChord{
		ChordSuggestion: cloneSuggestion(base),
		Extensions:      []string{},
		Substitutions:   []string{},
		Voicing:         VoicingClose,
		Complexity:      ComplexityBasic,
		GenreTags:       []string{"pop", "rock", "folk"},
	}
}

// GenerateExtensions derives the 7, 9, sus2, sus4 and add9 variants of a scale
// chord. The base chord is always the first element. Variants are only built
// for scales with at least seven notes and only ever use scale tones.
func (sc *ScaleContext) GenerateExtensions(base ChordSuggestion) []ExtendedChord {
	chords := []ExtendedChord{Extend(base)}

	n := len(sc.notes)
	if n < 7 || len(base.Notes) < 3 {
		return chords
	}

	r := sc.rootIndex(base)
	if r < 0 {
		return chords
	}

	root, third, fifth := base.Notes[0], base.Notes[1], base.Notes[2]
	seventh := sc.NoteAt(r + 6)

	chords = append(chords, sc.variant(base, base.Name+"7",
		[]string{root, third, fifth, seventh}, []string{"7"}, nil,
		VoicingClose, ComplexityIntermediate, "jazz", "soul", "r&b"))

	// the ninth is the next scale note above the root; it does not wrap past the last degree
	ninth, hasNinth := "", r+1 < n
	if hasNinth {
		ninth = sc.NoteAt(r + 1)
		chords = append(chords, sc.variant(base, base.Name+"9",
			[]string{root, third, fifth, seventh, ninth}, []string{"7", "9"}, nil,
			VoicingDrop2, ComplexityAdvanced, "jazz", "neo-soul"))
	}

	rootName := sc.NoteAt(r)
	chords = append(chords,
		sc.variant(base, rootName+"sus2",
			[]string{root, sc.NoteAt(r + 1), fifth}, []string{"sus2"}, []string{base.Name},
			VoicingOpen, ComplexityIntermediate, "pop", "ambient"),
		sc.variant(base, rootName+"sus4",
			[]string{root, sc.NoteAt(r + 3), fifth}, []string{"sus4"}, []string{base.Name},
			VoicingClose, ComplexityIntermediate, "rock", "pop"),
	)

	if hasNinth {
		chords = append(chords, sc.variant(base, base.Name+"add9",
			[]string{root, third, fifth, ninth}, []string{"add9"}, nil,
			VoicingOpen, ComplexityIntermediate, "pop", "indie"))
	}

	return chords
}

// AllChords returns the extensions of every degree's triad in degree order
func (sc *ScaleContext) AllChords() []ExtendedChord {
	chords := make([]ExtendedChord, 0)
	for _, triad := range sc.Triads() {
		chords = append(chords, sc.GenerateExtensions(triad)...)
	}
	return chords
}

// FindChord looks a chord symbol such as "Am" or "G7" up among the scale's chords
func (sc *ScaleContext) FindChord(name string) (ExtendedChord, error) {
	name = strings.TrimSpace(name)
	for _, chord := range sc.AllChords() {
		if chord.Name == name {
			return chord, nil
		}
	}
	return ExtendedChord{}, fmt.Errorf("%w: %q in %s", ErrUnknownChord, name, sc.KeyName())
}

// rootIndex locates the chord root inside the scale, preferring the degree the chord carries
func (sc *ScaleContext) rootIndex(chord ChordSuggestion) int {
	if chord.Degree >= 1 && chord.Degree <= len(sc.notes) {
		return chord.Degree - 1
	}
	if len(chord.Notes) == 0 {
		return -1
	}
	degree, err := sc.DegreeOf(chord.Notes[0])
	if err != nil {
		return -1
	}
	return degree - 1
}

func (sc *ScaleContext) variant(base ChordSuggestion, name string, notes, extensions, substitutions []string,
	voicing Voicing, complexity Complexity, genres ...string) ExtendedChord {

	chord := cloneSuggestion(base)
	chord.Name = name
	chord.Notes = notes
	chord.Tension = ""
	if len(extensions) > 0 {
		chord.Tension = extensions[len(extensions)-1]
	}

	if substitutions == nil {
		substitutions = []string{}
	}

	return ExtendedChord{
		ChordSuggestion: chord,
		Extensions:      extensions,
		Substitutions:   substitutions,
		Voicing:         voicing,
		Complexity:      complexity,
		GenreTags:       genres,
	}
}

func cloneSuggestion(s ChordSuggestion) ChordSuggestion {
	c := s
	c.Notes = append([]string(nil), s.Notes...)
	return c
}
