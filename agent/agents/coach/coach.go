package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

// llmAdvisor rephrases the deterministic briefing in a friendly coach
// voice. The briefing's verdict must survive the rephrasing; when the model
// drops it, the briefing itself is the reply.
type llmAdvisor struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func NewLLM(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Advisor, error) {
	runner, err := compilePhrasingGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile coach graph: %v", contractx.ErrModelInvoke, err)
	}
	return &llmAdvisor{runner: runner}, nil
}

func (a *llmAdvisor) Advise(ctx context.Context, req contractx.AdviceRequest) (contractx.AdviceResponse, error) {
	if strings.TrimSpace(req.Briefing) == "" {
		return contractx.AdviceResponse{}, fmt.Errorf("%w: briefing is empty", contractx.ErrValidation)
	}

	payload := map[string]any{
		"briefing":    req.Briefing,
		"place":       req.Place,
		"preferences": req.Preferences,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.AdviceResponse{}, fmt.Errorf("%w: marshal coach payload: %v", contractx.ErrValidation, err)
	}

	msg, err := a.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.AdviceResponse{}, fmt.Errorf("%w: coach invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return contractx.AdviceResponse{}, fmt.Errorf("%w: coach returned empty message", contractx.ErrSchemaViolation)
	}

	return contractx.AdviceResponse{Message: strings.TrimSpace(msg.Content)}, nil
}

func compilePhrasingGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add coach prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add coach model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add coach edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add coach edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add coach edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("coach.phrasing_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile coach phrasing graph: %w", err)
	}
	return runner, nil
}

// Passthrough returns the deterministic briefing unchanged. It is the
// default advisor when no model backend is configured.
type Passthrough struct{}

var _ contractx.Advisor = Passthrough{}

func (Passthrough) Advise(_ context.Context, req contractx.AdviceRequest) (contractx.AdviceResponse, error) {
	if strings.TrimSpace(req.Briefing) == "" {
		return contractx.AdviceResponse{}, fmt.Errorf("%w: briefing is empty", contractx.ErrValidation)
	}
	return contractx.AdviceResponse{Message: req.Briefing}, nil
}
