package pattern

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultStepsPerQuarter quantizes imports to sixteenth notes
const DefaultStepsPerQuarter = 4

type heldNote struct {
	tick     int64
	velocity uint8
}

// ReadMIDI imports the notes of a Standard MIDI File onto a step grid.
// Every track is merged; note-on with velocity 0 counts as note-off and
// notes still held at the end of a track last a single step.
func ReadMIDI(r io.Reader, stepsPerQuarter int) (notes []NoteEvent, e error) {
	// smf can panic on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			notes, e = nil, fmt.Errorf("failed to parse midi file: %v", rec)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse midi file: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("midi files with SMPTE time formats are not supported")
	}

	if stepsPerQuarter <= 0 {
		stepsPerQuarter = DefaultStepsPerQuarter
	}
	ticksPerStep := float64(ticks.Resolution()) / float64(stepsPerQuarter)
	if ticksPerStep <= 0 {
		ticksPerStep = 1
	}
	toSteps := func(t int64) int {
		return int(float64(t)/ticksPerStep + 0.5)
	}

	notes = make([]NoteEvent, 0)
	for _, track := range s.Tracks {
		var absTicks int64
		held := make(map[[2]uint8][]heldNote)

		for _, event := range track {
			absTicks += int64(event.Delta)

			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				id := [2]uint8{channel, key}
				held[id] = append(held[id], heldNote{tick: absTicks, velocity: velocity})

			case event.Message.GetNoteOff(&channel, &key, &velocity),
				event.Message.GetNoteOn(&channel, &key, &velocity):
				id := [2]uint8{channel, key}
				stack := held[id]
				if len(stack) == 0 {
					continue
				}
				on := stack[0]
				held[id] = stack[1:]

				notes = append(notes, NoteEvent{
					Step:     toSteps(on.tick),
					Pitch:    chroma.PitchNameFromMIDI(int(key)),
					Velocity: int(on.velocity),
					Duration: max(1, toSteps(absTicks)-toSteps(on.tick)),
					Active:   true,
				})
			}
		}

		for id, stack := range held {
			for _, on := range stack {
				notes = append(notes, NoteEvent{
					Step:     toSteps(on.tick),
					Pitch:    chroma.PitchNameFromMIDI(int(id[1])),
					Velocity: int(on.velocity),
					Duration: 1,
					Active:   true,
				})
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Step != notes[j].Step {
			return notes[i].Step < notes[j].Step
		}
		mi, _ := chroma.MIDIFromPitchName(notes[i].Pitch)
		mj, _ := chroma.MIDIFromPitchName(notes[j].Pitch)
		return mi < mj
	})

	return notes, nil
}
