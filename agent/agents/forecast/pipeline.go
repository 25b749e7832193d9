package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
	toolx "github.com/bluecastapp/bluecast/agent/tool"
)

// Stage names one step of the forecast pipeline.
type Stage string

const (
	StageGeocoding   Stage = "geocoding"
	StageForecasting Stage = "forecasting"
	StageAdvising    Stage = "advising"
)

// Status is the pipeline run state machine. Failed is absorbing for the
// current turn; only turn-scoped session slots are discarded on failure.
type Status string

const (
	StatusPending     Status = "pending"
	StatusGeocoding   Status = "geocoding"
	StatusForecasting Status = "forecasting"
	StatusAdvising    Status = "advising"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
)

// Run records one pipeline execution for accounting and rendering. Tools
// holds the per-invocation records, including retry attempt counts.
type Run struct {
	Status Status
	Stage  Stage
	Reason string
	Tools  []contractx.ToolResult
}

// StageError ties a failure to the stage that raised it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// runContext is the typed per-run context. Each stage writes exactly one
// slot and reads only what its predecessor wrote; missing required input is
// a contract error, not a silent lookup miss.
type runContext struct {
	state *statex.SessionState
	place string
	run   *Run
	exec  toolx.Executor
}

type runOutput struct {
	advice string
	run    *Run
}

// Pipeline executes geocoding, marine forecast, and surf coaching strictly
// in that order.
type Pipeline struct {
	geocoder  contractx.Geocoder
	forecasts contractx.ForecastProvider
	advisor   contractx.Advisor

	runner compose.Runnable[*runContext, runOutput]
}

func New(
	geocoder contractx.Geocoder,
	forecasts contractx.ForecastProvider,
	advisor contractx.Advisor,
) (*Pipeline, error) {
	if geocoder == nil {
		return nil, errors.New("geocoder is required")
	}
	if forecasts == nil {
		return nil, errors.New("forecast provider is required")
	}
	if advisor == nil {
		return nil, errors.New("advisor is required")
	}

	p := &Pipeline{
		geocoder:  geocoder,
		forecasts: forecasts,
		advisor:   advisor,
	}

	runner, err := p.compileGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.runner = runner
	return p, nil
}

func (p *Pipeline) compileGraph(ctx context.Context) (compose.Runnable[*runContext, runOutput], error) {
	graph := compose.NewGraph[*runContext, runOutput]()

	if err := graph.AddLambdaNode("geocode",
		compose.InvokableLambda(p.runGeocode),
	); err != nil {
		return nil, fmt.Errorf("add node geocode: %w", err)
	}
	if err := graph.AddLambdaNode("fetch_forecast",
		compose.InvokableLambda(p.runForecast),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_forecast: %w", err)
	}
	if err := graph.AddLambdaNode("advise",
		compose.InvokableLambda(p.runAdvise),
	); err != nil {
		return nil, fmt.Errorf("add node advise: %w", err)
	}

	edges := [][2]string{
		{compose.START, "geocode"},
		{"geocode", "fetch_forecast"},
		{"fetch_forecast", "advise"},
		{"advise", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("forecast.pipeline"))
	if err != nil {
		return nil, fmt.Errorf("compile forecast pipeline graph: %w", err)
	}
	return runner, nil
}

// Run executes the pipeline for one forecast request. Turn-scoped slots are
// reset here, once per request, before the first stage. On failure only
// those slots are discarded; persistent preferences are untouched.
func (p *Pipeline) Run(ctx context.Context, st *statex.SessionState, place string) (string, *Run, error) {
	if st == nil {
		return "", nil, fmt.Errorf("%w: session state is nil", contractx.ErrValidation)
	}

	st.ResetTurnScope()
	run := &Run{Status: StatusPending}

	out, err := p.runner.Invoke(ctx, &runContext{
		state: st,
		place: strings.TrimSpace(place),
		run:   run,
		exec:  toolx.NewExecutor(p.geocoder, p.forecasts, st),
	})
	if err != nil {
		run.Status = StatusFailed
		run.Reason = err.Error()
		var se *StageError
		if errors.As(err, &se) {
			run.Stage = se.Stage
		}
		st.ResetTurnScope()
		log.Warn().
			Str("stage", string(run.Stage)).
			Err(err).
			Msg("forecast pipeline failed")
		return "", run, err
	}

	return out.advice, out.run, nil
}

func (p *Pipeline) runGeocode(ctx context.Context, in *runContext) (*runContext, error) {
	if in == nil || in.state == nil {
		return nil, fmt.Errorf("%w: pipeline context is nil", contractx.ErrValidation)
	}
	in.run.Status = StatusGeocoding
	in.run.Stage = StageGeocoding

	if in.place == "" {
		return nil, &StageError{Stage: StageGeocoding, Err: fmt.Errorf("%w: place", contractx.ErrMissingStageInput)}
	}

	record, err := in.exec(ctx, toolx.ToolGetCoordinates, map[string]any{"place": in.place})
	in.run.Tools = append(in.run.Tools, record)
	if err != nil {
		return nil, &StageError{Stage: StageGeocoding, Err: err}
	}
	coords, ok := record.Result.(contractx.Coordinates)
	if !ok {
		return nil, &StageError{Stage: StageGeocoding, Err: fmt.Errorf("%w: unexpected coordinates payload", contractx.ErrMalformedPayload)}
	}

	in.state.Turn.Coordinates = &coords
	return in, nil
}

func (p *Pipeline) runForecast(ctx context.Context, in *runContext) (*runContext, error) {
	if in == nil || in.state == nil {
		return nil, fmt.Errorf("%w: pipeline context is nil", contractx.ErrValidation)
	}
	in.run.Status = StatusForecasting
	in.run.Stage = StageForecasting

	coords := in.state.Turn.Coordinates
	if coords == nil {
		return nil, &StageError{Stage: StageForecasting, Err: fmt.Errorf("%w: coordinates", contractx.ErrMissingStageInput)}
	}

	record, err := in.exec(ctx, toolx.ToolGetMarineForecast, map[string]any{
		"latitude":  coords.Latitude,
		"longitude": coords.Longitude,
	})
	in.run.Tools = append(in.run.Tools, record)
	if err != nil {
		return nil, &StageError{Stage: StageForecasting, Err: err}
	}
	forecast, ok := record.Result.(contractx.MarineForecast)
	if !ok {
		return nil, &StageError{Stage: StageForecasting, Err: fmt.Errorf("%w: unexpected forecast payload", contractx.ErrMalformedPayload)}
	}
	// The briefing indexes every series by the time axis, so a provider
	// returning ragged series must fail the stage here.
	if err := forecast.Validate(); err != nil {
		return nil, &StageError{Stage: StageForecasting, Err: err}
	}

	in.state.Turn.Forecast = &forecast
	return in, nil
}

func (p *Pipeline) runAdvise(ctx context.Context, in *runContext) (runOutput, error) {
	if in == nil || in.state == nil {
		return runOutput{}, fmt.Errorf("%w: pipeline context is nil", contractx.ErrValidation)
	}
	in.run.Status = StatusAdvising
	in.run.Stage = StageAdvising

	coords := in.state.Turn.Coordinates
	forecast := in.state.Turn.Forecast
	if coords == nil || forecast == nil {
		return runOutput{}, &StageError{Stage: StageAdvising, Err: fmt.Errorf("%w: forecast", contractx.ErrMissingStageInput)}
	}

	prefs := in.state.PreferenceSet().Collected
	briefing := RenderBriefing(coords.Place, *forecast, prefs)

	resp, err := p.advisor.Advise(ctx, contractx.AdviceRequest{
		Briefing:    briefing,
		Place:       coords.Place,
		Preferences: prefs,
	})
	if err != nil {
		return runOutput{}, &StageError{Stage: StageAdvising, Err: err}
	}

	advice := strings.TrimSpace(resp.Message)
	if advice == "" {
		return runOutput{}, &StageError{Stage: StageAdvising, Err: fmt.Errorf("%w: advisor returned empty message", contractx.ErrSchemaViolation)}
	}

	in.state.Turn.Advice = advice
	in.run.Status = StatusDone
	return runOutput{advice: advice, run: in.run}, nil
}
