package forecast

import (
	"strings"
	"testing"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

func fixtureForecast() contractx.MarineForecast {
	return contractx.MarineForecast{
		Time:          []string{"2026-08-31T00:00", "2026-08-31T12:00", "2026-09-01T06:00"},
		WaveHeight:    []float64{1.0, 1.4, 0.9},
		WaveDirection: []float64{270, 280, 260},
		WavePeriod:    []float64{8, 10, 9},
	}
}

func TestSummarizeByDayGroupsByCalendarDay(t *testing.T) {
	t.Parallel()

	days := summarizeByDay(fixtureForecast())
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	first := days[0]
	if first.Date != "2026-08-31" {
		t.Fatalf("unexpected date: %q", first.Date)
	}
	if first.MinHeight != 1.0 || first.MaxHeight != 1.4 {
		t.Fatalf("unexpected height range: %.1f-%.1f", first.MinHeight, first.MaxHeight)
	}
	if first.AvgPeriod != 9 {
		t.Fatalf("unexpected average period: %.1f", first.AvgPeriod)
	}
	if first.Hours != 2 {
		t.Fatalf("unexpected hour count: %d", first.Hours)
	}
}

func TestRenderBriefingGoForMatchingLevel(t *testing.T) {
	t.Parallel()

	out := RenderBriefing("San Sebastián", fixtureForecast(), map[string]string{
		"wave_height":      "1-2m",
		"experience_level": "intermediate",
		"wave_type":        "beach break",
	})

	if !strings.Contains(out, "San Sebastián") {
		t.Fatalf("briefing missing place: %q", out)
	}
	if !strings.Contains(out, "2026-08-31") {
		t.Fatalf("briefing missing date: %q", out)
	}
	if !strings.Contains(out, "Recommendation: GO.") {
		t.Fatalf("expected go verdict: %q", out)
	}
	if !strings.Contains(out, "medium/intermediate") {
		t.Fatalf("expected height band in briefing: %q", out)
	}
}

func TestRenderBriefingNoGoAboveLevel(t *testing.T) {
	t.Parallel()

	big := contractx.MarineForecast{
		Time:          []string{"2026-08-31T00:00"},
		WaveHeight:    []float64{3.2},
		WaveDirection: []float64{300},
		WavePeriod:    []float64{15},
	}
	out := RenderBriefing("Nazaré", big, map[string]string{
		"experience_level": "beginner",
	})
	if !strings.Contains(out, "Recommendation: NO-GO") {
		t.Fatalf("expected no-go verdict: %q", out)
	}
	if !strings.Contains(out, "above your level") {
		t.Fatalf("expected level warning: %q", out)
	}
}

func TestRenderBriefingNoGoWhenFlat(t *testing.T) {
	t.Parallel()

	flat := contractx.MarineForecast{
		Time:          []string{"2026-08-31T00:00"},
		WaveHeight:    []float64{0.1},
		WaveDirection: []float64{0},
		WavePeriod:    []float64{4},
	}
	out := RenderBriefing("Lake Geneva", flat, map[string]string{
		"experience_level": "expert",
	})
	if !strings.Contains(out, "Recommendation: NO-GO") || !strings.Contains(out, "flat") {
		t.Fatalf("expected flat no-go: %q", out)
	}
}

func TestRenderBriefingMentionsOptionalPreferences(t *testing.T) {
	t.Parallel()

	out := RenderBriefing("Hossegor", fixtureForecast(), map[string]string{
		"experience_level": "advanced",
		"wind_preference":  "offshore",
		"swell_direction":  "west",
	})
	if !strings.Contains(out, "offshore") {
		t.Fatalf("wind preference missing: %q", out)
	}
	if !strings.Contains(out, "west") {
		t.Fatalf("swell direction missing: %q", out)
	}
}
