package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Fixed interpretation tables for wave conditions. The numeric
// classification is deterministic; only the phrasing of the final reply is
// delegated to the advisor.

// SkillLevel orders rider ability so bands can be compared against the
// user's stated experience.
type SkillLevel int

const (
	SkillBeginner SkillLevel = iota
	SkillIntermediate
	SkillAdvanced
	SkillExpert
)

func (l SkillLevel) String() string {
	switch l {
	case SkillBeginner:
		return "beginner"
	case SkillIntermediate:
		return "intermediate"
	case SkillAdvanced:
		return "advanced"
	default:
		return "expert"
	}
}

// ParseSkillLevel maps a stated experience level onto the ladder. Unknown
// phrasing is treated as intermediate, the middle of the road.
func ParseSkillLevel(s string) SkillLevel {
	switch {
	case strings.Contains(strings.ToLower(s), "begin"):
		return SkillBeginner
	case strings.Contains(strings.ToLower(s), "advanc"):
		return SkillAdvanced
	case strings.Contains(strings.ToLower(s), "expert"):
		return SkillExpert
	default:
		return SkillIntermediate
	}
}

// HeightBand classifies wave height in meters.
func HeightBand(height float64) (label string, level SkillLevel) {
	switch {
	case height < 0.3:
		return "flat", SkillBeginner
	case height < 0.8:
		return "small", SkillBeginner
	case height < 1.5:
		return "medium", SkillIntermediate
	case height < 2.5:
		return "large", SkillAdvanced
	default:
		return "very large", SkillExpert
	}
}

// HeightBandLabel is the combined size/level wording used in briefings.
func HeightBandLabel(height float64) string {
	label, level := HeightBand(height)
	if label == "flat" {
		return "flat, not really surfable"
	}
	return fmt.Sprintf("%s/%s", label, level)
}

// PeriodBand classifies wave period in seconds.
func PeriodBand(period float64) string {
	switch {
	case period < 6:
		return "choppy"
	case period < 10:
		return "good"
	case period < 14:
		return "excellent (quality swell)"
	default:
		return "very long/powerful"
	}
}

var compassPoints = []string{
	"North", "Northeast", "East", "Southeast",
	"South", "Southwest", "West", "Northwest",
}

// Compass maps degrees to the nearest compass point, anchored at 0/360=N,
// 90=E, 180=S, 270=W with linear interpolation between cardinal points.
func Compass(degrees float64) string {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	idx := int(math.Round(degrees/45)) % len(compassPoints)
	return compassPoints[idx]
}
