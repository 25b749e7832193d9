package agents

import (
	"context"
	"fmt"

	coachx "github.com/bluecastapp/bluecast/agent/agents/coach"
	extractorx "github.com/bluecastapp/bluecast/agent/agents/extractor"
	contractx "github.com/bluecastapp/bluecast/agent/contract"
	llmx "github.com/bluecastapp/bluecast/agent/llm"
	promptx "github.com/bluecastapp/bluecast/agent/prompt"
)

type registryImpl struct {
	extractor contractx.Extractor
	advisor   contractx.Advisor
}

func (r *registryImpl) Extractor() contractx.Extractor {
	return r.extractor
}

func (r *registryImpl) Advisor() contractx.Advisor {
	return r.advisor
}

// NewRegistry builds the reasoning collaborators. With an API key it wires
// the model-backed extractor and coach; without one it falls back to the
// offline heuristic extractor and passthrough advisor so the engine still
// runs end to end.
func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if !cfg.Configured() {
		return NewOfflineRegistry(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	extractorModelCfg := cfg.OpenRouterFor(llmx.RoleExtractor)
	extractorModel, err := extractorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create extractor model: %v", contractx.ErrModelInvoke, err)
	}
	coachModelCfg := cfg.OpenRouterFor(llmx.RoleCoach)
	coachModel, err := coachModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create coach model: %v", contractx.ErrModelInvoke, err)
	}

	ext, err := extractorx.NewLLM(ctx, extractorModel, prompts.Extractor)
	if err != nil {
		return nil, err
	}
	adv, err := coachx.NewLLM(ctx, coachModel, prompts.Coach)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		extractor: ext,
		advisor:   adv,
	}, nil
}

// NewOfflineRegistry returns the deterministic collaborators.
func NewOfflineRegistry() contractx.Registry {
	return &registryImpl{
		extractor: extractorx.Heuristic{},
		advisor:   coachx.Passthrough{},
	}
}
