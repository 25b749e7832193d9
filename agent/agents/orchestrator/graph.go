package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(o.validateRequest),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_state",
		compose.InvokableLambda(o.loadOrCreateState),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_state: %w", err)
	}

	if err := graph.AddLambdaNode("collect_preferences",
		compose.InvokableLambda(o.collectPreferences),
	); err != nil {
		return nil, fmt.Errorf("add node collect_preferences: %w", err)
	}

	if err := graph.AddLambdaNode("run_forecast",
		compose.InvokableLambda(o.runForecast),
	); err != nil {
		return nil, fmt.Errorf("add node run_forecast: %w", err)
	}

	if err := graph.AddLambdaNode("save_state",
		compose.InvokableLambda(o.saveState),
	); err != nil {
		return nil, fmt.Errorf("add node save_state: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(o.finalizeReply),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	// The branch is the session state machine: stay in preference
	// collection until the profile is complete, then never come back.
	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *GraphState) (string, error) {
			if in == nil || in.Session == nil {
				return "", fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
			}
			if o.requirePreferences && !in.Session.PreferencesComplete {
				return "collect_preferences", nil
			}
			return "run_forecast", nil
		},
		map[string]bool{
			"collect_preferences": true,
			"run_forecast":        true,
		},
	)

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate_request: %w", err)
	}
	if err := graph.AddEdge("validate_request", "load_or_create_state"); err != nil {
		return nil, fmt.Errorf("add edge validate_request->load_or_create_state: %w", err)
	}
	if err := graph.AddBranch("load_or_create_state", branch); err != nil {
		return nil, fmt.Errorf("add branch load_or_create_state: %w", err)
	}
	if err := graph.AddEdge("collect_preferences", "save_state"); err != nil {
		return nil, fmt.Errorf("add edge collect_preferences->save_state: %w", err)
	}
	if err := graph.AddEdge("run_forecast", "save_state"); err != nil {
		return nil, fmt.Errorf("add edge run_forecast->save_state: %w", err)
	}
	if err := graph.AddEdge("save_state", "finalize_reply"); err != nil {
		return nil, fmt.Errorf("add edge save_state->finalize_reply: %w", err)
	}
	if err := graph.AddEdge("finalize_reply", compose.END); err != nil {
		return nil, fmt.Errorf("add edge finalize_reply->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
