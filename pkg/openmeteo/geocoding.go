package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	httpx "github.com/bluecastapp/bluecast/pkg/httpx"
)

const defaultGeocodingURL = "https://nominatim.openstreetmap.org/search"

type GeocodingConfig struct {
	URL       string        `envconfig:"URL" split_words:"true" default:"https://nominatim.openstreetmap.org/search"`
	UserAgent string        `envconfig:"USER_AGENT" split_words:"true" default:"BlueCastApp"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// GeocodingClient resolves free-text place names through Nominatim,
// capped to a single best-match candidate.
type GeocodingClient struct {
	baseURL string
	client  *httpx.Client
}

var _ contractx.Geocoder = (*GeocodingClient)(nil)

func NewGeocodingClient(cfg GeocodingConfig, opts ...httpx.Option) (*GeocodingClient, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		baseURL = defaultGeocodingURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid geocoding url: %w", err)
	}

	opts = append([]httpx.Option{httpx.WithUserAgent(strings.TrimSpace(cfg.UserAgent))}, opts...)
	return &GeocodingClient{
		baseURL: baseURL,
		client:  httpx.NewClient(cfg.Timeout, opts...),
	}, nil
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *GeocodingClient) Lookup(ctx context.Context, place string) (contractx.Coordinates, int, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return contractx.Coordinates{}, 0, fmt.Errorf("%w: place is empty", contractx.ErrValidation)
	}

	query := url.Values{}
	query.Set("q", place)
	query.Set("format", "jsonv2")
	query.Set("limit", "1")

	var results []nominatimResult
	attempts, err := c.client.GetJSON(ctx, c.baseURL, query, &results)
	if err != nil {
		return contractx.Coordinates{}, attempts, fmt.Errorf("geocoding lookup (attempts=%d): %w", attempts, err)
	}

	if len(results) == 0 {
		return contractx.Coordinates{}, attempts, fmt.Errorf("%w: %q", contractx.ErrLocationNotFound, place)
	}

	// Single candidate policy: the endpoint caps results at 1, so the
	// first entry is the best match.
	best := results[0]
	coords, err := parseCoordinates(best, place)
	if err != nil {
		return contractx.Coordinates{}, attempts, err
	}

	log.Info().
		Str("place", place).
		Float64("latitude", coords.Latitude).
		Float64("longitude", coords.Longitude).
		Int("attempts", attempts).
		Msg("geocoded place")
	return coords, attempts, nil
}

func parseCoordinates(r nominatimResult, place string) (contractx.Coordinates, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(r.Lat), 64)
	if err != nil {
		return contractx.Coordinates{}, fmt.Errorf("%w: latitude %q", contractx.ErrMalformedPayload, r.Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(r.Lon), 64)
	if err != nil {
		return contractx.Coordinates{}, fmt.Errorf("%w: longitude %q", contractx.ErrMalformedPayload, r.Lon)
	}
	name := strings.TrimSpace(r.DisplayName)
	if name == "" {
		name = place
	}
	return contractx.Coordinates{
		Latitude:  lat,
		Longitude: lon,
		Place:     name,
	}, nil
}

// IsNotFound reports whether err is the no-candidate outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, contractx.ErrLocationNotFound)
}
