package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

// llmExtractor maps free text onto preference fields with a structured
// model graph. The orchestration never depends on this concrete type; any
// contract.Extractor slots in.
type llmExtractor struct {
	runner compose.Runnable[map[string]any, extractorLLMOutput]
}

type extractorLLMOutput struct {
	Fields []struct {
		Field string `json:"field"`
		Value string `json:"value"`
	} `json:"fields,omitempty"`
	Place string `json:"place,omitempty"`
}

func NewLLM(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (contractx.Extractor, error) {
	runner, err := compileStructuredGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile extractor graph: %v", contractx.ErrModelInvoke, err)
	}
	return &llmExtractor{runner: runner}, nil
}

func (e *llmExtractor) Extract(ctx context.Context, req contractx.ExtractRequest) (contractx.ExtractResult, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.ExtractResult{}, nil
	}

	payload := map[string]any{
		"user_message": req.UserMessage,
		"collected":    req.Collected,
		"missing":      req.Missing,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.ExtractResult{}, fmt.Errorf("%w: marshal extractor payload: %v", contractx.ErrValidation, err)
	}

	out, err := e.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.ExtractResult{}, fmt.Errorf("%w: extractor invoke: %v", contractx.ErrModelInvoke, err)
	}

	res := contractx.ExtractResult{Place: strings.TrimSpace(out.Place)}
	for _, fv := range out.Fields {
		field := contractx.PreferenceField(strings.TrimSpace(fv.Field))
		value := strings.TrimSpace(fv.Value)
		if field == "" || value == "" {
			continue
		}
		if !contractx.IsKnownField(field) {
			return contractx.ExtractResult{}, fmt.Errorf("%w: unknown field %q", contractx.ErrSchemaViolation, field)
		}
		res.Fields = append(res.Fields, contractx.FieldValue{Field: field, Value: value})
	}

	return res, nil
}
