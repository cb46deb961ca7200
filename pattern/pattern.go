package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
)

// MaxStep is the last grid position a note may start on: 4096 bars of sixteenths
const MaxStep = 1<<16 - 1

// ErrInvalidNote reports a note whose step or duration is outside the grid
var ErrInvalidNote = errors.New("invalid note")

// NoteEvent is one cell of a step-sequencer grid
type NoteEvent struct {
	Step     int    `json:"step"`
	Pitch    string `json:"pitch"`    // letter + octave, e.g. "C#4"
	Velocity int    `json:"velocity"` // MIDI range 0-127
	Duration int    `json:"duration"` // steps, at least 1
	Active   bool   `json:"active"`
}

// UnmarshalJSON treats a missing "active" field as an active note
func (n *NoteEvent) UnmarshalJSON(data []byte) error {
	type plain NoteEvent
	raw := struct {
		plain
		Active *bool `json:"active"`
	}{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = NoteEvent(raw.plain)
	n.Active = raw.Active == nil || *raw.Active
	return nil
}

// Pattern is a saved editor pattern: the assumed key plus its notes
type Pattern struct {
	Root  string      `json:"root"`
	Scale string      `json:"scale"`
	Notes []NoteEvent `json:"notes"`
}

// ActiveNotes filters out inactive cells
func ActiveNotes(notes []NoteEvent) []NoteEvent {
	active := make([]NoteEvent, 0, len(notes))
	for _, n := range notes {
		if n.Active {
			active = append(active, n)
		}
	}
	return active
}

// Validate checks every active note sits on the grid, lasts at least one
// step and has a parseable pitch. Inactive cells are not inspected.
func Validate(notes []NoteEvent) error {
	for i, n := range notes {
		if !n.Active {
			continue
		}
		if n.Step < 0 || n.Step > MaxStep {
			return fmt.Errorf("note %d: %w: step %d outside [0, %d]", i, ErrInvalidNote, n.Step, MaxStep)
		}
		if n.Duration < 1 {
			return fmt.Errorf("note %d: %w: duration %d is shorter than one step", i, ErrInvalidNote, n.Duration)
		}
		if _, err := chroma.MIDIFromPitchName(n.Pitch); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}
	return nil
}

// Decode reads a JSON pattern
func Decode(r io.Reader) (*Pattern, error) {
	var p Pattern
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode pattern: %w", err)
	}
	if p.Notes == nil {
		p.Notes = []NoteEvent{}
	}
	return &p, nil
}

// Load reads a pattern from a .json file or imports the notes of a Standard
// MIDI File. MIDI imports carry no key, so Root and Scale are left empty.
func Load(path string, stepsPerQuarter int) (*Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		notes, err := ReadMIDI(f, stepsPerQuarter)
		if err != nil {
			return nil, err
		}
		return &Pattern{Notes: notes}, nil
	case ".json":
		return Decode(f)
	default:
		return nil, fmt.Errorf("unsupported pattern format %q", filepath.Ext(path))
	}
}
