package scalehelper

import (
	"github.com/RyanBlaney/sonido-armonia/algorithms/chroma"
	"github.com/RyanBlaney/sonido-armonia/algorithms/tonal"
	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/pattern"
)

// Modulation is a change of detected key between two adjacent windows
type Modulation struct {
	FromKey  string `json:"from_key"`
	ToKey    string `json:"to_key"`
	Position int    `json:"position"` // first step of the later window
	Type     string `json:"type"`
}

// Tension is a note outside the scale with the scale note it resolves to
type Tension struct {
	Position       int    `json:"position"`
	Note           string `json:"note"`
	ResolutionNote string `json:"resolution_note"`
}

// HarmonicAnalysis describes chord movement and key stability
type HarmonicAnalysis struct {
	ChordProgressions []tonal.ChordProgression `json:"chord_progressions"`
	Tonicity          int                      `json:"tonicity"` // 0-100
	Modulations       []Modulation             `json:"modulations"`
	Tensions          []Tension                `json:"tensions"`
	NextChords        []tonal.ExtendedChord    `json:"next_chords"`
}

// AnalyzeHarmony identifies a chord per fixed window of steps, labels the
// movement between adjacent matched windows, measures how much of the
// sequence stays in the scale and looks for key changes
func (a *Analyzer) AnalyzeHarmony(notes []pattern.NoteEvent) (*HarmonicAnalysis, error) {
	parsed, err := parseNotes(notes)
	if err != nil {
		return nil, err
	}

	analysis := &HarmonicAnalysis{
		ChordProgressions: []tonal.ChordProgression{},
		Modulations:       []Modulation{},
		Tensions:          []Tension{},
		NextChords:        []tonal.ExtendedChord{},
	}
	if len(parsed) == 0 {
		return analysis, nil
	}

	logger := a.logger.WithFields(logging.Fields{
		"function": "AnalyzeHarmony",
		"notes":    len(parsed),
	})

	chords, err := a.identifyWindows(parsed)
	if err != nil {
		return nil, err
	}
	analysis.ChordProgressions = progressionsOf(chords)

	analysis.Tonicity = a.tonicity(parsed)

	analysis.Modulations, err = a.detectModulations(parsed)
	if err != nil {
		return nil, err
	}

	for _, n := range parsed {
		if a.context.Contains(n.pc) {
			continue
		}
		resolution, _ := a.context.ClosestScaleNote(n.letter)
		analysis.Tensions = append(analysis.Tensions, Tension{
			Position:       n.Step,
			Note:           n.Pitch,
			ResolutionNote: resolution,
		})
	}

	// what could follow the progression so far
	advisor := a.NewAdvisor()
	for _, wc := range chords {
		advisor.AddToHistory(tonal.Extend(wc.chord))
	}
	if len(advisor.History()) > 0 {
		analysis.NextChords = advisor.SuggestNext()
	}

	logger.Debug("Harmony analyzed", logging.Fields{
		"progressions": len(analysis.ChordProgressions),
		"tonicity":     analysis.Tonicity,
		"modulations":  len(analysis.Modulations),
		"tensions":     len(analysis.Tensions),
	})

	return analysis, nil
}

// windowChord is the scale triad matched in one chord window
type windowChord struct {
	index int
	chord tonal.ChordSuggestion
}

// identifyWindows returns the matched windows in step order. Windows with no
// notes or no matching triad are left out.
func (a *Analyzer) identifyWindows(parsed []parsedNote) ([]windowChord, error) {
	windows := groupLetters(parsed, a.config.Harmony.ChordWindowSteps)

	chords := make([]windowChord, 0, len(windows))
	for _, w := range windows {
		chord, ok, err := a.detector.IdentifyChord(w.letters)
		if err != nil {
			return nil, err
		}
		if ok {
			chords = append(chords, windowChord{index: w.index, chord: chord})
		}
	}
	return chords, nil
}

// progressionsOf labels each pair of adjacent matched windows. Runs of
// consecutive windows are fed to a progression analyzer and broken by a gap.
func progressionsOf(chords []windowChord) []tonal.ChordProgression {
	progressions := make([]tonal.ChordProgression, 0)

	run := tonal.NewChordProgressionAnalyzer()
	flush := func() {
		progressions = append(progressions, run.AnalyzeProgression()...)
		run = tonal.NewChordProgressionAnalyzer()
	}

	for i, wc := range chords {
		if i > 0 && wc.index != chords[i-1].index+1 {
			flush()
		}
		run.AddChord(wc.chord)
	}
	flush()

	return progressions
}

func (a *Analyzer) detectModulations(parsed []parsedNote) ([]Modulation, error) {
	size := a.config.Harmony.ModulationWindowSteps
	threshold := a.config.Harmony.ModulationConfidence

	windows := groupLetters(parsed, size)
	keys := make([]tonal.KeyCandidate, len(windows))
	for i, w := range windows {
		key, err := tonal.DetectKey(w.letters)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	modulations := make([]Modulation, 0)
	for i := 0; i+1 < len(windows); i++ {
		if windows[i+1].index != windows[i].index+1 {
			continue
		}
		from, to := keys[i], keys[i+1]
		if from.Confidence > threshold && to.Confidence > threshold && from.Root != to.Root {
			modulations = append(modulations, Modulation{
				FromKey:  from.KeyName,
				ToKey:    to.KeyName,
				Position: windows[i+1].index * size,
				Type:     tonal.ClassifyKeyTransition(from.Root, to.Root),
			})
		}
	}
	return modulations, nil
}

// letterWindow holds the distinct letters sounding in one window of steps
type letterWindow struct {
	index   int // window number, first step is index*size
	letters []string
}

// groupLetters buckets the distinct letters of each non-overlapping window of
// size steps. Only windows holding a note are returned, in step order, so
// the work follows the note count rather than the last step. parsed must be
// ordered by step.
func groupLetters(parsed []parsedNote, size int) []letterWindow {
	if size <= 0 {
		size = 1
	}

	windows := make([]letterWindow, 0)
	var seen map[chroma.PitchClass]bool
	for _, n := range parsed {
		w := n.Step / size
		if len(windows) == 0 || windows[len(windows)-1].index != w {
			windows = append(windows, letterWindow{index: w})
			seen = make(map[chroma.PitchClass]bool)
		}
		if !seen[n.pc] {
			seen[n.pc] = true
			current := &windows[len(windows)-1]
			current.letters = append(current.letters, n.letter)
		}
	}
	return windows
}
