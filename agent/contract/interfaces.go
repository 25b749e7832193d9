package contract

import "context"

// Extractor maps free-form user text to preference fields and an optional
// place name. An empty result means nothing was recognized; that is a valid
// outcome, not an error.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}

// Advisor phrases the final surf recommendation from a deterministic
// briefing. Implementations must keep the briefing's verdict intact.
type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) (AdviceResponse, error)
}

// Registry bundles the reasoning collaborators the orchestrator depends on.
type Registry interface {
	Extractor() Extractor
	Advisor() Advisor
}

// Geocoder resolves a free-text place to coordinates. No-match is reported
// as ErrLocationNotFound, never as empty coordinates. The int reports how
// many transport attempts the call spent, including the successful one, so
// tool records stay accurate when a call recovers after retries.
type Geocoder interface {
	Lookup(ctx context.Context, place string) (Coordinates, int, error)
}

// ForecastProvider fetches the fixed-horizon hourly marine series. The int
// counts transport attempts the same way Geocoder.Lookup does.
type ForecastProvider interface {
	Forecast(ctx context.Context, latitude, longitude float64) (MarineForecast, int, error)
}
