package forecast

import (
	"fmt"
	"strings"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

// daySummary aggregates one calendar day of the hourly series.
type daySummary struct {
	Date      string
	MinHeight float64
	MaxHeight float64
	AvgPeriod float64
	AvgDir    float64
	Hours     int
}

func summarizeByDay(f contractx.MarineForecast) []daySummary {
	var days []daySummary
	index := map[string]int{}

	for i, ts := range f.Time {
		date := ts
		if idx := strings.IndexByte(ts, 'T'); idx > 0 {
			date = ts[:idx]
		}

		pos, ok := index[date]
		if !ok {
			index[date] = len(days)
			days = append(days, daySummary{
				Date:      date,
				MinHeight: f.WaveHeight[i],
				MaxHeight: f.WaveHeight[i],
			})
			pos = len(days) - 1
		}

		d := &days[pos]
		if f.WaveHeight[i] < d.MinHeight {
			d.MinHeight = f.WaveHeight[i]
		}
		if f.WaveHeight[i] > d.MaxHeight {
			d.MaxHeight = f.WaveHeight[i]
		}
		d.AvgPeriod += f.WavePeriod[i]
		d.AvgDir += f.WaveDirection[i]
		d.Hours++
	}

	for i := range days {
		if days[i].Hours > 0 {
			days[i].AvgPeriod /= float64(days[i].Hours)
			days[i].AvgDir /= float64(days[i].Hours)
		}
	}
	return days
}

// RenderBriefing turns the raw series plus the user's preferences into the
// deterministic recommendation text. The verdict compares the biggest day
// against the stated experience level; the advisor may rephrase the text
// but the verdict stands.
func RenderBriefing(place string, f contractx.MarineForecast, prefs map[string]string) string {
	days := summarizeByDay(f)
	skill := ParseSkillLevel(prefs[string(contractx.FieldExperienceLevel)])

	var b strings.Builder
	fmt.Fprintf(&b, "Surf forecast for %s:\n", place)

	surfable := false
	withinLevel := true
	for _, d := range days {
		label := HeightBandLabel(d.MaxHeight)
		_, level := HeightBand(d.MaxHeight)
		if d.MaxHeight >= 0.3 {
			surfable = true
			if level > skill {
				withinLevel = false
			}
		}
		fmt.Fprintf(&b, "- %s: waves %.1f-%.1fm (%s), period ~%.0fs (%s), swell from the %s\n",
			d.Date, d.MinHeight, d.MaxHeight, label,
			d.AvgPeriod, PeriodBand(d.AvgPeriod), Compass(d.AvgDir))
	}

	if wind := prefs[string(contractx.FieldWindPreference)]; wind != "" {
		fmt.Fprintf(&b, "You prefer %s wind; check local wind reports before paddling out.\n", wind)
	}
	if swell := prefs[string(contractx.FieldSwellDirection)]; swell != "" {
		fmt.Fprintf(&b, "Preferred swell direction: %s.\n", swell)
	}

	switch {
	case !surfable:
		fmt.Fprintf(&b, "Recommendation: NO-GO. The ocean is close to flat over the next days.")
	case !withinLevel:
		fmt.Fprintf(&b, "Recommendation: NO-GO for a %s surfer. These conditions are above your level; sit this one out or bring a coach.", skill)
	default:
		fmt.Fprintf(&b, "Recommendation: GO. Conditions suit a %s surfer riding %s waves.",
			skill, prefs[string(contractx.FieldWaveHeight)])
	}

	return b.String()
}
