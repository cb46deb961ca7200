package chroma

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPitchName is returned for any letter or pitch token that cannot be
// resolved to a pitch class. No entry point falls back to a default pitch.
var ErrInvalidPitchName = errors.New("invalid pitch name")

// PitchClass is a chromatic position on the 12-tone circle (0=C, 1=C#, ..., 11=B)
type PitchClass int

// NumPitchClasses is the size of the chromatic circle
const NumPitchClasses = 12

// pitchClassNames is the sharp-spelling table used for every rendered name
var pitchClassNames = [NumPitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturalPitchClasses = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// String returns the sharp-spelled letter name
func (pc PitchClass) String() string {
	return LetterNameOf(pc)
}

// Normalize reduces any integer to the 0-11 range
func Normalize(n int) PitchClass {
	return PitchClass(((n % NumPitchClasses) + NumPitchClasses) % NumPitchClasses)
}

// PitchClassOf resolves a letter name such as "C", "F#", "Db" or "cb" to its pitch class.
// Any number of '#' or 'b' accidentals is accepted; enharmonic spellings collapse.
func PitchClassOf(letter string) (PitchClass, error) {
	name := strings.TrimSpace(letter)
	if name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrInvalidPitchName)
	}

	base, ok := naturalPitchClasses[upper(name[0])]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitchName, letter)
	}

	for _, accidental := range name[1:] {
		switch accidental {
		case '#':
			base++
		case 'b':
			base--
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidPitchName, letter)
		}
	}

	return Normalize(base), nil
}

// LetterNameOf returns the sharp-spelled name of a pitch class
func LetterNameOf(pc PitchClass) string {
	return pitchClassNames[Normalize(int(pc))]
}

// PitchClassNames returns the 12 sharp-spelled names in chromatic order starting at C
func PitchClassNames() []string {
	names := make([]string, NumPitchClasses)
	copy(names, pitchClassNames[:])
	return names
}

// CircularDistance is the shortest distance between two pitch classes on the
// chromatic circle. It is symmetric and always within [0, 6].
func CircularDistance(a, b PitchClass) int {
	diff := int(Normalize(int(a))) - int(Normalize(int(b)))
	if diff < 0 {
		diff = -diff
	}
	return min(diff, NumPitchClasses-diff)
}

// MIDINumber computes (octave+1)*12 + pitchClass, so C4 is 60
func MIDINumber(letter string, octave int) (int, error) {
	pc, err := PitchClassOf(letter)
	if err != nil {
		return 0, err
	}
	return (octave+1)*NumPitchClasses + int(pc), nil
}

// ParsePitch splits a pitch name such as "C#4" or "Bb-1" into its letter part and octave
func ParsePitch(pitch string) (string, int, error) {
	name := strings.TrimSpace(pitch)

	split := len(name)
	for i := 1; i < len(name); i++ {
		if name[i] == '-' || (name[i] >= '0' && name[i] <= '9') {
			split = i
			break
		}
	}

	if split == 0 || split == len(name) {
		return "", 0, fmt.Errorf("%w: %q has no octave", ErrInvalidPitchName, pitch)
	}

	letter := name[:split]
	if _, err := PitchClassOf(letter); err != nil {
		return "", 0, err
	}

	octave, err := strconv.Atoi(name[split:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q has a malformed octave", ErrInvalidPitchName, pitch)
	}

	return letter, octave, nil
}

// MIDIFromPitchName converts an octave-qualified pitch name to its MIDI number
func MIDIFromPitchName(pitch string) (int, error) {
	letter, octave, err := ParsePitch(pitch)
	if err != nil {
		return 0, err
	}
	return MIDINumber(letter, octave)
}

// PitchNameFromMIDI renders a MIDI number with the sharp table, e.g. 61 -> "C#4"
func PitchNameFromMIDI(midi int) string {
	octave := floorDiv(midi, NumPitchClasses) - 1
	return fmt.Sprintf("%s%d", LetterNameOf(Normalize(midi)), octave)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
