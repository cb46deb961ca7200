package temporal

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
)

// RhythmProfile summarises the step positions and lengths of a note sequence
type RhythmProfile struct {
	UniqueDurations int     `json:"unique_durations"`
	Syncopated      bool    `json:"syncopated"` // some note starts on an off-beat sixteenth
	Complexity      int     `json:"complexity"`
	Density         float64 `json:"density"` // notes per step

	// Dominant repetition period of the onset grid, 0 when there is none
	PeriodSteps    int     `json:"period_steps"`
	PeriodStrength float64 `json:"period_strength"` // autocorrelation at the period over zero-lag energy
}

// RhythmParams contains parameters for rhythm analysis
type RhythmParams struct {
	StepsPerBeat      int     `json:"steps_per_beat"`
	SyncopationBonus  int     `json:"syncopation_bonus"`
	MinPeriodStrength float64 `json:"min_period_strength"`
	MinPeriodLag      int     `json:"min_period_lag"`

	// Longest onset grid searched for a period; longer sequences report none
	MaxGridSteps int `json:"max_grid_steps"`
}

// DefaultMaxGridSteps bounds the autocorrelation to 256 bars of sixteenths
const DefaultMaxGridSteps = 4096

// RhythmAnalyzer measures rhythmic variety and periodicity on a step grid
type RhythmAnalyzer struct {
	params RhythmParams
}

// NewRhythmAnalyzer creates a rhythm analyzer for a sixteenth-note grid
func NewRhythmAnalyzer() *RhythmAnalyzer {
	return NewRhythmAnalyzerWithParams(RhythmParams{
		StepsPerBeat:      4,
		SyncopationBonus:  5,
		MinPeriodStrength: 0.5,
		MinPeriodLag:      2,
		MaxGridSteps:      DefaultMaxGridSteps,
	})
}

// NewRhythmAnalyzerWithParams creates a rhythm analyzer with custom parameters
func NewRhythmAnalyzerWithParams(params RhythmParams) *RhythmAnalyzer {
	if params.StepsPerBeat <= 0 {
		params.StepsPerBeat = 4
	}
	if params.MinPeriodLag < 1 {
		params.MinPeriodLag = 1
	}
	if params.MaxGridSteps <= 0 {
		params.MaxGridSteps = DefaultMaxGridSteps
	}
	return &RhythmAnalyzer{params: params}
}

// Analyze builds the profile from parallel slices of note start steps and durations
func (ra *RhythmAnalyzer) Analyze(steps, durations []int) RhythmProfile {
	profile := RhythmProfile{}
	if len(steps) == 0 {
		return profile
	}

	unique := make(map[int]bool)
	for _, d := range durations {
		unique[d] = true
	}
	profile.UniqueDurations = len(unique)

	maxStep := 0
	for _, step := range steps {
		maxStep = max(maxStep, step)
		if ra.isOffBeat(step) {
			profile.Syncopated = true
		}
	}

	profile.Complexity = profile.UniqueDurations
	if profile.Syncopated {
		profile.Complexity += ra.params.SyncopationBonus
	}
	profile.Density = float64(len(steps)) / float64(maxStep+1)

	if maxStep < ra.params.MaxGridSteps {
		profile.PeriodSteps, profile.PeriodStrength = ra.findPeriod(onsetGrid(steps, maxStep+1))
	}

	return profile
}

// off-beat sixteenths: the second and fourth step of a beat
func (ra *RhythmAnalyzer) isOffBeat(step int) bool {
	pos := step % ra.params.StepsPerBeat
	return pos%2 == 1
}

func onsetGrid(steps []int, length int) []float64 {
	grid := make([]float64, length)
	for _, step := range steps {
		if step >= 0 && step < length {
			grid[step]++
		}
	}
	return grid
}

// findPeriod picks the first strongest autocorrelation lag in [MinPeriodLag, len/2]
func (ra *RhythmAnalyzer) findPeriod(grid []float64) (int, float64) {
	ac := Autocorrelation(grid)
	if len(ac) == 0 || ac[0] <= 0 {
		return 0, 0
	}

	bestLag, bestValue := 0, 0.0
	for lag := ra.params.MinPeriodLag; lag <= len(grid)/2; lag++ {
		if ac[lag] > bestValue+1e-9 {
			bestLag, bestValue = lag, ac[lag]
		}
	}

	strength := bestValue / ac[0]
	if bestLag == 0 || strength < ra.params.MinPeriodStrength {
		return 0, 0
	}
	return bestLag, strength
}

// Autocorrelation computes the linear (non-circular) autocorrelation of a
// signal through the power spectrum. The result has the signal's length.
func Autocorrelation(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return []float64{}
	}

	padded := make([]float64, common.NextPowerOfTwo(2*n))
	copy(padded, signal)

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		mag := cmplx.Abs(c)
		spectrum[i] = complex(mag*mag, 0)
	}

	inverse := fft.IFFT(spectrum)
	ac := make([]float64, n)
	for i := range ac {
		ac[i] = real(inverse[i])
	}
	return ac
}
