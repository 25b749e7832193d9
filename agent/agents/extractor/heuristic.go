package extractor

import (
	"context"
	"regexp"
	"strings"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

// Heuristic is a deterministic, offline Extractor. It recognizes the common
// phrasings for each preference slot and never reports a place; the
// orchestrator falls back to the raw utterance when it awaits a location.
type Heuristic struct{}

var _ contractx.Extractor = Heuristic{}

var (
	heightRangePattern  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:-|–|to)\s*(\d+(?:[.,]\d+)?)\s*m`)
	heightSinglePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*m(?:eter)?s?\b`)
	waveTypePattern     = regexp.MustCompile(`(?i)\b(beach|reef|point)[\s-]?break\b`)
	levelPattern        = regexp.MustCompile(`(?i)\b(beginner|intermediate|advanced|expert)\b`)
	windPattern         = regexp.MustCompile(`(?i)\b(offshore|onshore|cross[\s-]?shore)\b`)
	swellPattern        = regexp.MustCompile(`(?i)\b(north|northeast|east|southeast|south|southwest|west|northwest)(?:erly)?\s+swell\b`)
)

func (Heuristic) Extract(_ context.Context, req contractx.ExtractRequest) (contractx.ExtractResult, error) {
	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		return contractx.ExtractResult{}, nil
	}

	var res contractx.ExtractResult
	add := func(field contractx.PreferenceField, value string) {
		res.Fields = append(res.Fields, contractx.FieldValue{Field: field, Value: value})
	}

	if m := heightRangePattern.FindStringSubmatch(text); m != nil {
		add(contractx.FieldWaveHeight, m[1]+"-"+m[2]+"m")
	} else if m := heightSinglePattern.FindStringSubmatch(text); m != nil {
		add(contractx.FieldWaveHeight, m[1]+"m")
	}

	if m := waveTypePattern.FindStringSubmatch(text); m != nil {
		add(contractx.FieldWaveType, strings.ToLower(m[1])+" break")
	}

	if m := levelPattern.FindStringSubmatch(text); m != nil {
		add(contractx.FieldExperienceLevel, strings.ToLower(m[1]))
	}

	if m := windPattern.FindStringSubmatch(text); m != nil {
		add(contractx.FieldWindPreference, strings.ToLower(strings.ReplaceAll(m[1], " ", "-")))
	}

	if m := swellPattern.FindStringSubmatch(text); m != nil {
		add(contractx.FieldSwellDirection, strings.ToLower(m[1]))
	}

	return res, nil
}
