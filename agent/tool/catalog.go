package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
	httpx "github.com/bluecastapp/bluecast/pkg/httpx"
)

const (
	ToolSavePreference    = "save_preference"
	ToolCheckPreferences  = "check_preferences_complete"
	ToolGetCoordinates    = "get_coordinates"
	ToolGetMarineForecast = "get_marine_forecast"
)

// Executor runs one named tool against the current session. The ToolResult
// is the invocation record and is always populated; a non-nil error is the
// typed failure behind the record's Error field, so callers keep errors.Is
// semantics while still getting the record for accounting.
type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Infos describes the catalog for model tool binding.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolSavePreference,
			Desc: "Save one surf preference field for the current user.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"field": {Type: schema.String, Desc: "One of wave_height, wave_type, experience_level, wind_preference, swell_direction", Required: true},
				"value": {Type: schema.String, Desc: "The preference value as stated by the user", Required: true},
			}),
		},
		{
			Name:        ToolCheckPreferences,
			Desc:        "Check whether all required surf preferences are collected.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolGetCoordinates,
			Desc: "Resolve a place name to latitude, longitude, and the canonical place name.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"place": {Type: schema.String, Desc: "Free-text place name", Required: true},
			}),
		},
		{
			Name: ToolGetMarineForecast,
			Desc: "Fetch the 3-day hourly marine forecast for coordinates.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"latitude":  {Type: schema.Number, Desc: "Latitude in decimal degrees", Required: true},
				"longitude": {Type: schema.Number, Desc: "Longitude in decimal degrees", Required: true},
			}),
		},
	}
}

// NewExecutor binds the catalog to concrete backends and one session.
func NewExecutor(
	geocoder contractx.Geocoder,
	forecasts contractx.ForecastProvider,
	session *statex.SessionState,
) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		var (
			out contractx.ToolResult
			err error
		)
		switch tool {
		case ToolSavePreference:
			out, err = executeSavePreference(session, args)
		case ToolCheckPreferences:
			out, err = executeCheckPreferences(session)
		case ToolGetCoordinates:
			out, err = executeGetCoordinates(ctx, geocoder, args)
		case ToolGetMarineForecast:
			out, err = executeGetMarineForecast(ctx, forecasts, args)
		default:
			err = fmt.Errorf("tool=%s is not in the catalog", tool)
			out = contractx.ToolResult{Tool: tool, Error: err.Error(), Attempts: 1}
		}

		log.Debug().
			Str("tool", out.Tool).
			Int("attempts", out.Attempts).
			Bool("failed", out.Error != "").
			Msg("tool invoked")
		return out, err
	}
}

func executeSavePreference(session *statex.SessionState, args map[string]any) (contractx.ToolResult, error) {
	field, ok := stringArg(args, "field")
	if !ok {
		return failed(ToolSavePreference, fmt.Errorf("%w: field is required", contractx.ErrValidation))
	}
	value, ok := stringArg(args, "value")
	if !ok {
		return failed(ToolSavePreference, fmt.Errorf("%w: value is required", contractx.ErrValidation))
	}

	confirmation, err := session.SetPreference(contractx.PreferenceField(field), value)
	if err != nil {
		return failed(ToolSavePreference, err)
	}
	return contractx.ToolResult{
		Tool:     ToolSavePreference,
		Result:   confirmation,
		Attempts: 1,
	}, nil
}

func executeCheckPreferences(session *statex.SessionState) (contractx.ToolResult, error) {
	return contractx.ToolResult{
		Tool:     ToolCheckPreferences,
		Result:   session.PreferenceSet(),
		Attempts: 1,
	}, nil
}

func executeGetCoordinates(ctx context.Context, geocoder contractx.Geocoder, args map[string]any) (contractx.ToolResult, error) {
	place, ok := stringArg(args, "place")
	if !ok {
		return failed(ToolGetCoordinates, fmt.Errorf("%w: place is required", contractx.ErrValidation))
	}

	coords, attempts, err := geocoder.Lookup(ctx, place)
	if err != nil {
		out, _ := failed(ToolGetCoordinates, err)
		out.Attempts = recordAttempts(attempts, err)
		return out, err
	}
	return contractx.ToolResult{
		Tool:     ToolGetCoordinates,
		Result:   coords,
		Attempts: recordAttempts(attempts, nil),
	}, nil
}

func executeGetMarineForecast(ctx context.Context, forecasts contractx.ForecastProvider, args map[string]any) (contractx.ToolResult, error) {
	latitude, ok := floatArg(args, "latitude")
	if !ok {
		return failed(ToolGetMarineForecast, fmt.Errorf("%w: latitude is required", contractx.ErrValidation))
	}
	longitude, ok := floatArg(args, "longitude")
	if !ok {
		return failed(ToolGetMarineForecast, fmt.Errorf("%w: longitude is required", contractx.ErrValidation))
	}

	forecast, attempts, err := forecasts.Forecast(ctx, latitude, longitude)
	if err != nil {
		out, _ := failed(ToolGetMarineForecast, err)
		out.Attempts = recordAttempts(attempts, err)
		return out, err
	}
	return contractx.ToolResult{
		Tool:     ToolGetMarineForecast,
		Result:   forecast,
		Attempts: recordAttempts(attempts, nil),
	}, nil
}

func failed(tool string, err error) (contractx.ToolResult, error) {
	return contractx.ToolResult{Tool: tool, Error: err.Error(), Attempts: 1}, err
}

// recordAttempts reconciles the backend's attempt count with the typed
// exhaustion error; a backend that never reached the transport still counts
// as one invocation.
func recordAttempts(reported int, err error) int {
	if n, ok := httpx.AttemptsFrom(err); ok {
		return n
	}
	if reported < 1 {
		return 1
	}
	return reported
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func floatArg(args map[string]any, key string) (float64, bool) {
	raw, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
