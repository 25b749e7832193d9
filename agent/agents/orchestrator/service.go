package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	forecastx "github.com/bluecastapp/bluecast/agent/agents/forecast"
	preferencesx "github.com/bluecastapp/bluecast/agent/agents/preferences"
	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidUser    = errors.New("user id is empty")
)

type Config struct {
	// SkipPreferenceGate disables the preference-completeness gate, so every
	// turn goes straight to the forecast pipeline. Default off: preferences
	// are required before any forecast runs.
	SkipPreferenceGate bool
}

// Orchestrator is the root per-turn state machine. It decides between
// collecting preferences and running the forecast pipeline, and renders
// exactly one reply per user turn.
type Orchestrator struct {
	store    statex.Store
	registry contractx.Registry
	prefs    *preferencesx.Unit
	pipeline *forecastx.Pipeline

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	requirePreferences bool

	now func() time.Time
}

func New(
	store statex.Store,
	registry contractx.Registry,
	geocoder contractx.Geocoder,
	forecasts contractx.ForecastProvider,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if registry == nil {
		return nil, errors.New("registry is required")
	}

	prefsUnit, err := preferencesx.New(registry.Extractor())
	if err != nil {
		return nil, err
	}

	pipeline, err := forecastx.New(geocoder, forecasts, registry.Advisor())
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		store:              store,
		registry:           registry,
		prefs:              prefsUnit,
		pipeline:           pipeline,
		requirePreferences: !cfg.SkipPreferenceGate,
		now:                time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// CreateSession bootstraps a fresh session: every preference slot absent
// and the completeness flag down.
func (o *Orchestrator) CreateSession(ctx context.Context, userID, sessionID string) (*statex.SessionState, error) {
	st := statex.NewSessionState(userID, sessionID, o.now())
	if err := o.store.Save(ctx, st); err != nil {
		return nil, err
	}
	log.Info().
		Str("user_id", userID).
		Str("session_id", sessionID).
		Msg("session created")
	return st, nil
}

// HandleTurn processes one user turn and returns the single reply for it.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, sessionID, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, GraphInput{
		UserID:    userID,
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}
