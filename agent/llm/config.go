package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	openrouterx "github.com/bluecastapp/bluecast/pkg/openrouter"
)

// Role identifies which reasoning collaborator a model serves.
type Role string

const (
	RoleExtractor Role = "extractor"
	RoleCoach     Role = "coach"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-2.5-flash-lite"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	ExtractorModel       string  `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	CoachModel           string  `envconfig:"COACH_MODEL" split_words:"true"`
	ExtractorTemperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true" default:"-1"`
	CoachTemperature     float32 `envconfig:"COACH_TEMPERATURE" split_words:"true" default:"-1"`
}

// Configured reports whether an LLM backend is available at all. When it is
// not, the registry falls back to the offline collaborators.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Configured() {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the per-role model override on top of the defaults.
func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case RoleExtractor:
		if v := strings.TrimSpace(c.ExtractorModel); v != "" {
			modelName = v
		}
		if c.ExtractorTemperature >= 0 {
			temp = c.ExtractorTemperature
		}
	case RoleCoach:
		if v := strings.TrimSpace(c.CoachModel); v != "" {
			modelName = v
		}
		if c.CoachTemperature >= 0 {
			temp = c.CoachTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
