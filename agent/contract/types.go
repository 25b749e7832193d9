package contract

import "fmt"

// PreferenceField names one slot of the user's surf profile.
type PreferenceField string

const (
	FieldWaveHeight      PreferenceField = "wave_height"
	FieldWaveType        PreferenceField = "wave_type"
	FieldExperienceLevel PreferenceField = "experience_level"
	FieldWindPreference  PreferenceField = "wind_preference"
	FieldSwellDirection  PreferenceField = "swell_direction"
)

// RequiredFields are the slots that must be filled before a forecast runs.
// OptionalFields refine the recommendation but never block it.
var (
	RequiredFields = []PreferenceField{FieldWaveHeight, FieldWaveType, FieldExperienceLevel}
	OptionalFields = []PreferenceField{FieldWindPreference, FieldSwellDirection}
)

func IsKnownField(f PreferenceField) bool {
	switch f {
	case FieldWaveHeight, FieldWaveType, FieldExperienceLevel, FieldWindPreference, FieldSwellDirection:
		return true
	}
	return false
}

type ExtractRequest struct {
	UserMessage string            `json:"user_message"`
	Collected   map[string]string `json:"collected,omitempty"`
	Missing     []string          `json:"missing,omitempty"`
}

// FieldValue is one recognized preference slot.
type FieldValue struct {
	Field PreferenceField `json:"field"`
	Value string          `json:"value"`
}

// ExtractResult carries every slot recognized in one utterance, plus an
// optional place name. An empty result is an extraction miss, not an error.
type ExtractResult struct {
	Fields []FieldValue `json:"fields,omitempty"`
	Place  string       `json:"place,omitempty"`
}

func (r ExtractResult) Empty() bool {
	return len(r.Fields) == 0 && r.Place == ""
}

// SaveConfirmation is returned by a preference save.
type SaveConfirmation struct {
	Action string          `json:"action"`
	Field  PreferenceField `json:"field"`
	Value  string          `json:"value"`
}

// Completeness is the pure result of a preference completeness check.
type Completeness struct {
	Complete  bool              `json:"complete"`
	Missing   []PreferenceField `json:"missing,omitempty"`
	Collected map[string]string `json:"collected,omitempty"`
}

// Coordinates is the geocoding stage output. Immutable once written.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Place     string  `json:"place"`
}

// MarineForecast is the raw hourly series from the marine endpoint,
// passed through the pipeline without interpretation.
type MarineForecast struct {
	Time          []string  `json:"time"`
	WaveHeight    []float64 `json:"wave_height"`
	WaveDirection []float64 `json:"wave_direction"`
	WavePeriod    []float64 `json:"wave_period"`
}

func (f MarineForecast) Len() int {
	return len(f.Time)
}

// Validate checks that every hourly variable covers the same hours. The
// briefing indexes all series by the time axis, so a ragged payload must
// be rejected before it reaches summarization.
func (f MarineForecast) Validate() error {
	n := len(f.Time)
	if n == 0 {
		return fmt.Errorf("%w: hourly series is empty", ErrMalformedPayload)
	}
	if len(f.WaveHeight) != n || len(f.WaveDirection) != n || len(f.WavePeriod) != n {
		return fmt.Errorf("%w: hourly series lengths disagree (time=%d height=%d direction=%d period=%d)",
			ErrMalformedPayload, n, len(f.WaveHeight), len(f.WaveDirection), len(f.WavePeriod))
	}
	return nil
}

// AdviceRequest is everything the advisor needs to phrase a recommendation.
// Briefing is the deterministic classification of the conditions; the
// advisor may rephrase it but never changes the verdict.
type AdviceRequest struct {
	Briefing    string            `json:"briefing"`
	Place       string            `json:"place"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

type AdviceResponse struct {
	Message string `json:"message"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult records one tool invocation outcome, including how many
// attempts the retry policy spent on it.
type ToolResult struct {
	Tool     string `json:"tool"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}
