package pattern

import (
	"fmt"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
)

// PreviewPitches turns chord letters into octave-qualified names for an audio
// preview. The first note sits in the given octave and each following note is
// moved up an octave when needed so the chord ascends.
func PreviewPitches(letters []string, octave int) ([]string, error) {
	pitches := make([]string, 0, len(letters))

	prev := -1
	for _, letter := range letters {
		midi, err := chroma.MIDINumber(letter, octave)
		if err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
		for midi <= prev {
			midi += chroma.NumPitchClasses
		}
		prev = midi
		pitches = append(pitches, chroma.PitchNameFromMIDI(midi))
	}

	return pitches, nil
}

// ChordEvents lays a chord out as simultaneous note events starting at step
func ChordEvents(letters []string, octave, step, duration, velocity int) ([]NoteEvent, error) {
	pitches, err := PreviewPitches(letters, octave)
	if err != nil {
		return nil, err
	}

	events := make([]NoteEvent, len(pitches))
	for i, pitch := range pitches {
		events[i] = NoteEvent{
			Step:     step,
			Pitch:    pitch,
			Velocity: velocity,
			Duration: max(1, duration),
			Active:   true,
		}
	}
	return events, nil
}
