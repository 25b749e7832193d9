package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	forecastx "github.com/bluecastapp/bluecast/agent/agents/forecast"
	preferencesx "github.com/bluecastapp/bluecast/agent/agents/preferences"
	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
)

const (
	replyNotFound = "I couldn't find that spot on the map. Could you give me a more specific place name?"
	replyFailed   = "Sorry, I couldn't fetch the forecast right now. Your preferences are saved, so just try again in a moment."
)

type GraphInput struct {
	UserID    string
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
}

// GraphState flows through the per-turn graph. Only the node that owns a
// field writes it.
type GraphState struct {
	UserID    string
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.SessionState
	Reply   string
}

func (o *Orchestrator) validateRequest(_ context.Context, in GraphInput) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		UserID:    userID,
		SessionID: sessionID,
		Text:      text,
		Now:       o.now().UTC(),
	}, nil
}

func (o *Orchestrator) loadOrCreateState(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := o.store.Load(ctx, in.UserID, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, err
		}
		st = statex.NewSessionState(in.UserID, in.SessionID, in.Now)
	}

	in.Session = st
	return in, nil
}

// collectPreferences is the COLLECTING_PREFERENCES branch. It applies the
// extractor, acknowledges whatever was saved, and either asks for the next
// missing field or hands over to the location ask. When the completing
// message also names a place, the forecast runs in the same turn.
func (o *Orchestrator) collectPreferences(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	res, err := o.prefs.Apply(ctx, in.Session, in.Text)
	if err != nil {
		return nil, err
	}

	if res.Completeness.Complete && res.Place != "" {
		return o.runForecastFor(ctx, in, res.Place)
	}

	ack := preferencesx.Acknowledge(res.Saved)
	question := preferencesx.NextQuestion(res.Completeness)
	if ack == "" {
		in.Reply = question
	} else {
		in.Reply = ack + " " + question
	}
	return in, nil
}

// runForecast is the AWAITING_LOCATION / RUNNING_FORECAST branch. Field
// collection is never re-invoked here; the extractor only contributes a
// place name, falling back to the raw utterance.
func (o *Orchestrator) runForecast(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	place := in.Text
	extracted, err := o.registry.Extractor().Extract(ctx, contractx.ExtractRequest{
		UserMessage: in.Text,
	})
	if err == nil && strings.TrimSpace(extracted.Place) != "" {
		place = strings.TrimSpace(extracted.Place)
	}

	return o.runForecastFor(ctx, in, place)
}

func (o *Orchestrator) runForecastFor(ctx context.Context, in *GraphState, place string) (*GraphState, error) {
	advice, run, err := o.pipeline.Run(ctx, in.Session, place)
	if err != nil {
		// Pipeline failures end the turn, not the session. Persistent
		// preferences survive; the user can retry the same message.
		switch {
		case errors.Is(err, contractx.ErrLocationNotFound):
			in.Reply = replyNotFound
		default:
			in.Reply = replyFailed
		}
		log.Warn().
			Str("stage", string(run.Stage)).
			Str("reason", run.Reason).
			Msg("forecast turn failed")
		return in, nil
	}

	in.Reply = advice
	if run.Status != forecastx.StatusDone {
		return nil, fmt.Errorf("%w: pipeline ended in status %s", contractx.ErrValidation, run.Status)
	}
	return in, nil
}

func (o *Orchestrator) saveState(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := o.store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}

func (o *Orchestrator) finalizeReply(_ context.Context, in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply}, nil
}
