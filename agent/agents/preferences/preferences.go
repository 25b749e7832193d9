package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
)

// Unit incrementally collects the user's surf profile. It never blocks the
// conversation: an utterance with nothing to extract is a no-op.
type Unit struct {
	extractor contractx.Extractor
}

func New(extractor contractx.Extractor) (*Unit, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	return &Unit{extractor: extractor}, nil
}

// ApplyResult reports what one turn of collection did to the session.
type ApplyResult struct {
	Saved        []contractx.SaveConfirmation
	Place        string
	Completeness contractx.Completeness
}

// Apply runs the extractor over the utterance and persists every recognized
// field. Fields already saved are overwritten only when the user restates
// them; they are never cleared.
func (u *Unit) Apply(ctx context.Context, st *statex.SessionState, text string) (ApplyResult, error) {
	if st == nil {
		return ApplyResult{}, fmt.Errorf("%w: session state is nil", contractx.ErrValidation)
	}

	current := st.PreferenceSet()
	extracted, err := u.extractor.Extract(ctx, contractx.ExtractRequest{
		UserMessage: text,
		Collected:   current.Collected,
		Missing:     fieldNames(current.Missing),
	})
	if err != nil {
		return ApplyResult{}, err
	}

	res := ApplyResult{Place: strings.TrimSpace(extracted.Place)}
	for _, fv := range extracted.Fields {
		if !contractx.IsKnownField(fv.Field) {
			log.Debug().Str("field", string(fv.Field)).Msg("extractor produced unknown field, skipping")
			continue
		}
		confirmation, err := st.SetPreference(fv.Field, fv.Value)
		if err != nil {
			// A bad value from the extractor must not block the turn.
			log.Debug().Str("field", string(fv.Field)).Err(err).Msg("skipping unsaveable preference")
			continue
		}
		res.Saved = append(res.Saved, confirmation)
	}

	res.Completeness = st.PreferenceSet()
	return res, nil
}

// CheckComplete is the side-effect-free completeness check.
func (u *Unit) CheckComplete(st *statex.SessionState) contractx.Completeness {
	if st == nil {
		return contractx.Completeness{Missing: append([]contractx.PreferenceField(nil), contractx.RequiredFields...)}
	}
	return st.PreferenceSet()
}

// questionFor is the fixed prompt table for the next missing field. Tone is
// out of scope here; these are plain asks.
var questionFor = map[contractx.PreferenceField]string{
	contractx.FieldWaveHeight:      "What wave height do you prefer (for example 1-2m, 2-3m)?",
	contractx.FieldWaveType:        "What type of wave do you prefer: beach break, reef break, or point break?",
	contractx.FieldExperienceLevel: "What's your experience level: beginner, intermediate, or advanced?",
}

// NextQuestion returns the ask for the first missing required field, or the
// handoff line once the profile is complete. It never asks about a field
// that is already present.
func NextQuestion(c contractx.Completeness) string {
	if c.Complete {
		return "Your preferences are all set. Where would you like to surf?"
	}
	for _, field := range c.Missing {
		if q, ok := questionFor[field]; ok {
			return q
		}
	}
	return "Tell me a bit more about the waves you like."
}

// Acknowledge renders the confirmations for this turn's saves.
func Acknowledge(saved []contractx.SaveConfirmation) string {
	if len(saved) == 0 {
		return ""
	}
	parts := make([]string, 0, len(saved))
	for _, s := range saved {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(string(s.Field), "_", " "), s.Value))
	}
	return "Noted " + strings.Join(parts, ", ") + "."
}

func fieldNames(fields []contractx.PreferenceField) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}
