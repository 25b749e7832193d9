package extractor

import (
	"context"
	"testing"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

func extractFields(t *testing.T, message string) map[contractx.PreferenceField]string {
	t.Helper()
	res, err := Heuristic{}.Extract(context.Background(), contractx.ExtractRequest{UserMessage: message})
	if err != nil {
		t.Fatalf("Extract(%q) error = %v", message, err)
	}
	out := make(map[contractx.PreferenceField]string, len(res.Fields))
	for _, fv := range res.Fields {
		out[fv.Field] = fv.Value
	}
	return out
}

func TestHeuristicExtractHeightRange(t *testing.T) {
	t.Parallel()

	fields := extractFields(t, "Waves 1-2m please")
	if got := fields[contractx.FieldWaveHeight]; got != "1-2m" {
		t.Fatalf("wave_height = %q, want 1-2m", got)
	}
}

func TestHeuristicExtractSingleHeight(t *testing.T) {
	t.Parallel()

	fields := extractFields(t, "something around 1.5 meters would be nice")
	if got := fields[contractx.FieldWaveHeight]; got != "1.5m" {
		t.Fatalf("wave_height = %q, want 1.5m", got)
	}
}

func TestHeuristicExtractMultipleFields(t *testing.T) {
	t.Parallel()

	fields := extractFields(t, "intermediate, beach break")
	if got := fields[contractx.FieldExperienceLevel]; got != "intermediate" {
		t.Fatalf("experience_level = %q", got)
	}
	if got := fields[contractx.FieldWaveType]; got != "beach break" {
		t.Fatalf("wave_type = %q", got)
	}
}

func TestHeuristicExtractOptionalFields(t *testing.T) {
	t.Parallel()

	fields := extractFields(t, "I like offshore mornings with a west swell")
	if got := fields[contractx.FieldWindPreference]; got != "offshore" {
		t.Fatalf("wind_preference = %q", got)
	}
	if got := fields[contractx.FieldSwellDirection]; got != "west" {
		t.Fatalf("swell_direction = %q", got)
	}
}

func TestHeuristicExtractMissIsSilent(t *testing.T) {
	t.Parallel()

	res, err := Heuristic{}.Extract(context.Background(), contractx.ExtractRequest{
		UserMessage: "tell me a joke about the ocean",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestHeuristicNeverReportsPlace(t *testing.T) {
	t.Parallel()

	res, err := Heuristic{}.Extract(context.Background(), contractx.ExtractRequest{
		UserMessage: "San Sebastián",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Place != "" {
		t.Fatalf("heuristic must not guess places, got %q", res.Place)
	}
}

func TestHeuristicEmptyMessage(t *testing.T) {
	t.Parallel()

	res, err := Heuristic{}.Extract(context.Background(), contractx.ExtractRequest{UserMessage: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
