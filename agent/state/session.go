package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

var (
	ErrUnknownField = errors.New("unknown preference field")
	ErrEmptyValue   = errors.New("preference value is empty")
)

// Preferences are the persistent slots of a session. They survive across
// turns and are mutated only through SetPreference.
type Preferences struct {
	WaveHeight      string `json:"wave_height,omitempty"`
	WaveType        string `json:"wave_type,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	WindPreference  string `json:"wind_preference,omitempty"`
	SwellDirection  string `json:"swell_direction,omitempty"`
}

// TurnState holds the slots that are valid only for the current forecast
// request. Each one is written by exactly one pipeline stage per run.
type TurnState struct {
	Coordinates *contractx.Coordinates    `json:"coordinates,omitempty"`
	Forecast    *contractx.MarineForecast `json:"marine_forecast,omitempty"`
	Advice      string                    `json:"surf_advice,omitempty"`
}

// SessionState is the single source of truth for one (user, session) pair.
type SessionState struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`

	Preferences         Preferences `json:"preferences"`
	PreferencesComplete bool        `json:"preferences_complete"`

	Turn TurnState `json:"turn,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(userID, sessionID string, now time.Time) *SessionState {
	return &SessionState{
		UserID:    userID,
		SessionID: sessionID,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

/* --------------------------- Preference access --------------------------- */

// Preference returns the value of a persistent slot, absent when unset.
func (s *SessionState) Preference(field contractx.PreferenceField) (string, bool) {
	v := s.preferenceValue(field)
	return v, v != ""
}

func (s *SessionState) preferenceValue(field contractx.PreferenceField) string {
	switch field {
	case contractx.FieldWaveHeight:
		return s.Preferences.WaveHeight
	case contractx.FieldWaveType:
		return s.Preferences.WaveType
	case contractx.FieldExperienceLevel:
		return s.Preferences.ExperienceLevel
	case contractx.FieldWindPreference:
		return s.Preferences.WindPreference
	case contractx.FieldSwellDirection:
		return s.Preferences.SwellDirection
	}
	return ""
}

// SetPreference writes one persistent slot and returns a structured save
// confirmation. Values only ever overwrite, never clear: an empty value is
// rejected so a saved field cannot be unset later in the session.
func (s *SessionState) SetPreference(field contractx.PreferenceField, value string) (contractx.SaveConfirmation, error) {
	if !contractx.IsKnownField(field) {
		return contractx.SaveConfirmation{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return contractx.SaveConfirmation{}, fmt.Errorf("%w: field %q", ErrEmptyValue, field)
	}

	switch field {
	case contractx.FieldWaveHeight:
		s.Preferences.WaveHeight = value
	case contractx.FieldWaveType:
		s.Preferences.WaveType = value
	case contractx.FieldExperienceLevel:
		s.Preferences.ExperienceLevel = value
	case contractx.FieldWindPreference:
		s.Preferences.WindPreference = value
	case contractx.FieldSwellDirection:
		s.Preferences.SwellDirection = value
	}

	s.PreferencesComplete = s.PreferenceSet().Complete

	return contractx.SaveConfirmation{
		Action: "save_" + string(field),
		Field:  field,
		Value:  value,
	}, nil
}

// PreferenceSet computes the completeness view from current persistent
// state. Pure: calling it twice without an intervening save yields
// identical results.
func (s *SessionState) PreferenceSet() contractx.Completeness {
	collected := make(map[string]string, len(contractx.RequiredFields)+len(contractx.OptionalFields))
	var missing []contractx.PreferenceField

	for _, field := range contractx.RequiredFields {
		if v, ok := s.Preference(field); ok {
			collected[string(field)] = v
		} else {
			missing = append(missing, field)
		}
	}
	for _, field := range contractx.OptionalFields {
		if v, ok := s.Preference(field); ok {
			collected[string(field)] = v
		}
	}

	return contractx.Completeness{
		Complete:  len(missing) == 0,
		Missing:   missing,
		Collected: collected,
	}
}

/* ---------------------------- Turn-scoped slots --------------------------- */

// ResetTurnScope clears the turn-scoped slots and nothing else. Called once
// per new forecast request, never mid-pipeline.
func (s *SessionState) ResetTurnScope() {
	s.Turn = TurnState{}
}

func (s *SessionState) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if s.PreferencesComplete && !s.PreferenceSet().Complete {
		return fmt.Errorf("preferences_complete is set but required fields are missing: %v", s.PreferenceSet().Missing)
	}
	// Stage outputs only exist downstream of their producers.
	if s.Turn.Forecast != nil && s.Turn.Coordinates == nil {
		return errors.New("marine forecast present without coordinates")
	}
	if s.Turn.Advice != "" && s.Turn.Forecast == nil {
		return errors.New("surf advice present without marine forecast")
	}
	return nil
}
