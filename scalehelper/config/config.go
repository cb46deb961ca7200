package config

// AnalysisConfig holds the windows and thresholds used by the sequence analyzer
type AnalysisConfig struct {
	Harmony    *HarmonyConfig    `json:"harmony"`
	Complexity *ComplexityConfig `json:"complexity"`
	Mood       *MoodConfig       `json:"mood"`
	Feedback   *FeedbackConfig   `json:"feedback"`
	Advisor    *AdvisorConfig    `json:"advisor"`
	Rhythm     *RhythmConfig     `json:"rhythm"`
}

type HarmonyConfig struct {
	ChordWindowSteps      int `json:"chord_window_steps"`      // non-overlapping windows for chord identification
	ModulationWindowSteps int `json:"modulation_window_steps"` // windows for per-section key detection
	ModulationConfidence  int `json:"modulation_confidence"`   // both windows must exceed this
}

type ComplexityConfig struct {
	BeginnerMax     int `json:"beginner_max"`     // unique notes + rhythmic complexity
	IntermediateMax int `json:"intermediate_max"` // above this is advanced
}

// MoodConfig drives the velocity/density rule table. Velocities are MIDI 0-127.
type MoodConfig struct {
	EnergeticVelocity float64 `json:"energetic_velocity"`
	EnergeticDensity  float64 `json:"energetic_density"`
	CalmVelocity      float64 `json:"calm_velocity"`
	BusyDensity       float64 `json:"busy_density"`
}

// FeedbackConfig holds the suggestion and warning thresholds
type FeedbackConfig struct {
	MinKeyConfidence int `json:"min_key_confidence"`
	MinRange         int `json:"min_range"`        // semitones
	MaxRange         int `json:"max_range"`        // semitones, playability warning above
	MaxStepwisePct   int `json:"max_stepwise_pct"` // suggest leaps above
	MaxOutOfScalePct int `json:"max_out_of_scale_pct"`
}

type AdvisorConfig struct {
	HistorySize int `json:"history_size"`
	MinQuality  int `json:"min_quality"`
}

// RhythmConfig bounds the onset grid searched for a repetition period.
// Sequences whose last note starts at or past MaxGridSteps report no period.
type RhythmConfig struct {
	MaxGridSteps int `json:"max_grid_steps"`
}

// DefaultAnalysisConfig returns the standard thresholds
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Harmony: &HarmonyConfig{
			ChordWindowSteps:      4,
			ModulationWindowSteps: 8,
			ModulationConfidence:  70,
		},
		Complexity: &ComplexityConfig{
			BeginnerMax:     8,
			IntermediateMax: 15,
		},
		Mood: &MoodConfig{
			EnergeticVelocity: 100,
			EnergeticDensity:  0.5,
			CalmVelocity:      60,
			BusyDensity:       0.75,
		},
		Feedback: &FeedbackConfig{
			MinKeyConfidence: 70,
			MinRange:         5,
			MaxRange:         24,
			MaxStepwisePct:   90,
			MaxOutOfScalePct: 30,
		},
		Advisor: &AdvisorConfig{
			HistorySize: 8,
			MinQuality:  60,
		},
		Rhythm: &RhythmConfig{
			MaxGridSteps: 4096,
		},
	}
}

// WithDefaults fills every missing section from DefaultAnalysisConfig
func (c *AnalysisConfig) WithDefaults() *AnalysisConfig {
	def := DefaultAnalysisConfig()
	if c == nil {
		return def
	}

	out := *c
	if out.Harmony == nil {
		out.Harmony = def.Harmony
	}
	if out.Complexity == nil {
		out.Complexity = def.Complexity
	}
	if out.Mood == nil {
		out.Mood = def.Mood
	}
	if out.Feedback == nil {
		out.Feedback = def.Feedback
	}
	if out.Advisor == nil {
		out.Advisor = def.Advisor
	}
	if out.Rhythm == nil {
		out.Rhythm = def.Rhythm
	}
	return &out
}
