package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/coach.txt
	coachRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Extractor string
	Coach     string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Extractor: strings.TrimSpace(extractorRaw),
		Coach:     strings.TrimSpace(coachRaw),
	}
}
