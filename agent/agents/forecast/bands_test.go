package forecast

import "testing"

func TestHeightBand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		height float64
		label  string
		level  SkillLevel
	}{
		{0.1, "flat", SkillBeginner},
		{0.3, "small", SkillBeginner},
		{0.79, "small", SkillBeginner},
		{0.8, "medium", SkillIntermediate},
		{1.2, "medium", SkillIntermediate},
		{1.49, "medium", SkillIntermediate},
		{1.5, "large", SkillAdvanced},
		{2.49, "large", SkillAdvanced},
		{2.5, "very large", SkillExpert},
		{4.0, "very large", SkillExpert},
	}
	for _, tc := range cases {
		label, level := HeightBand(tc.height)
		if label != tc.label || level != tc.level {
			t.Errorf("HeightBand(%.2f) = (%q, %s), want (%q, %s)", tc.height, label, level, tc.label, tc.level)
		}
	}
}

func TestPeriodBand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		period float64
		want   string
	}{
		{3, "choppy"},
		{5.9, "choppy"},
		{6, "good"},
		{8, "good"},
		{10, "excellent (quality swell)"},
		{13.9, "excellent (quality swell)"},
		{14, "very long/powerful"},
		{20, "very long/powerful"},
	}
	for _, tc := range cases {
		if got := PeriodBand(tc.period); got != tc.want {
			t.Errorf("PeriodBand(%.1f) = %q, want %q", tc.period, got, tc.want)
		}
	}
}

func TestCompass(t *testing.T) {
	t.Parallel()

	cases := []struct {
		degrees float64
		want    string
	}{
		{0, "North"},
		{90, "East"},
		{180, "South"},
		{270, "West"},
		{45, "Northeast"},
		{225, "Southwest"},
		{350, "North"},
		{360, "North"},
		{-90, "West"},
		{135, "Southeast"},
	}
	for _, tc := range cases {
		if got := Compass(tc.degrees); got != tc.want {
			t.Errorf("Compass(%.0f) = %q, want %q", tc.degrees, got, tc.want)
		}
	}
}

func TestParseSkillLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]SkillLevel{
		"beginner":                SkillBeginner,
		"I'm a total Beginner":    SkillBeginner,
		"intermediate":            SkillIntermediate,
		"advanced":                SkillAdvanced,
		"expert":                  SkillExpert,
		"something else entirely": SkillIntermediate,
		"":                        SkillIntermediate,
	}
	for in, want := range cases {
		if got := ParseSkillLevel(in); got != want {
			t.Errorf("ParseSkillLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
