package preferences

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
)

type fakeExtractor struct {
	result contractx.ExtractResult
	err    error
	calls  []contractx.ExtractRequest
}

func (f *fakeExtractor) Extract(ctx context.Context, req contractx.ExtractRequest) (contractx.ExtractResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return contractx.ExtractResult{}, f.err
	}
	return f.result, nil
}

func newSession(t *testing.T) *statex.SessionState {
	t.Helper()
	return statex.NewSessionState("user-1", "session-1", time.Now())
}

func TestApplySavesExtractedFields(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{result: contractx.ExtractResult{
		Fields: []contractx.FieldValue{
			{Field: contractx.FieldWaveHeight, Value: "1-2m"},
			{Field: contractx.FieldWaveType, Value: "beach break"},
		},
	}}
	unit, err := New(ext)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newSession(t)
	res, err := unit.Apply(context.Background(), st, "Waves 1-2m on a beach break")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(res.Saved) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(res.Saved))
	}
	if res.Completeness.Complete {
		t.Fatal("experience level still missing, profile must be incomplete")
	}
	if v, _ := st.Preference(contractx.FieldWaveHeight); v != "1-2m" {
		t.Fatalf("wave height not saved: %q", v)
	}

	// The extractor is told what is already collected and what is missing.
	if len(ext.calls) != 1 {
		t.Fatalf("expected 1 extractor call, got %d", len(ext.calls))
	}
	if len(ext.calls[0].Missing) != len(contractx.RequiredFields) {
		t.Fatalf("unexpected missing list: %v", ext.calls[0].Missing)
	}
}

func TestApplyExtractionMissIsNoOp(t *testing.T) {
	t.Parallel()

	unit, err := New(&fakeExtractor{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newSession(t)
	res, err := unit.Apply(context.Background(), st, "what a lovely day")
	if err != nil {
		t.Fatalf("an extraction miss must not error: %v", err)
	}
	if len(res.Saved) != 0 {
		t.Fatalf("expected no saves, got %v", res.Saved)
	}
	if st.PreferencesComplete {
		t.Fatal("state must be untouched")
	}
}

func TestApplySkipsUnknownAndEmptyFields(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{result: contractx.ExtractResult{
		Fields: []contractx.FieldValue{
			{Field: "board_color", Value: "red"},
			{Field: contractx.FieldWaveType, Value: "   "},
			{Field: contractx.FieldExperienceLevel, Value: "advanced"},
		},
	}}
	unit, err := New(ext)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	st := newSession(t)
	res, err := unit.Apply(context.Background(), st, "whatever")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(res.Saved) != 1 || res.Saved[0].Field != contractx.FieldExperienceLevel {
		t.Fatalf("only the valid field must be saved: %+v", res.Saved)
	}
}

func TestApplyPropagatesExtractorFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("model unavailable")
	unit, err := New(&fakeExtractor{err: wantErr})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := unit.Apply(context.Background(), newSession(t), "hi"); !errors.Is(err, wantErr) {
		t.Fatalf("expected extractor error, got %v", err)
	}
}

func TestApplyReportsPlace(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{result: contractx.ExtractResult{Place: " San Sebastián "}}
	unit, err := New(ext)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := unit.Apply(context.Background(), newSession(t), "San Sebastián")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Place != "San Sebastián" {
		t.Fatalf("place not trimmed through: %q", res.Place)
	}
}

func TestNextQuestionAsksFirstMissingRequiredField(t *testing.T) {
	t.Parallel()

	st := newSession(t)
	q := NextQuestion(st.PreferenceSet())
	if !strings.Contains(q, "wave height") {
		t.Fatalf("expected wave height question first, got %q", q)
	}

	if _, err := st.SetPreference(contractx.FieldWaveHeight, "1-2m"); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}
	q = NextQuestion(st.PreferenceSet())
	if !strings.Contains(q, "type of wave") {
		t.Fatalf("expected wave type question next, got %q", q)
	}
}

func TestNextQuestionHandsOverWhenComplete(t *testing.T) {
	t.Parallel()

	st := newSession(t)
	for field, value := range map[contractx.PreferenceField]string{
		contractx.FieldWaveHeight:      "1-2m",
		contractx.FieldWaveType:        "beach break",
		contractx.FieldExperienceLevel: "intermediate",
	} {
		if _, err := st.SetPreference(field, value); err != nil {
			t.Fatalf("SetPreference() error = %v", err)
		}
	}

	q := NextQuestion(st.PreferenceSet())
	if !strings.Contains(q, "Where would you like to surf") {
		t.Fatalf("expected location handoff, got %q", q)
	}
}

func TestAcknowledgeRendersSaves(t *testing.T) {
	t.Parallel()

	if got := Acknowledge(nil); got != "" {
		t.Fatalf("no saves must acknowledge nothing, got %q", got)
	}

	got := Acknowledge([]contractx.SaveConfirmation{
		{Field: contractx.FieldWaveHeight, Value: "1-2m"},
		{Field: contractx.FieldWaveType, Value: "beach break"},
	})
	if !strings.Contains(got, "wave height: 1-2m") || !strings.Contains(got, "wave type: beach break") {
		t.Fatalf("unexpected acknowledgement: %q", got)
	}
}
