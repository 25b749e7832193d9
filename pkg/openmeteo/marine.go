package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	httpx "github.com/bluecastapp/bluecast/pkg/httpx"
)

const (
	defaultMarineURL = "https://marine-api.open-meteo.com/v1/marine"

	forecastDays   = 3
	hourlyVariable = "wave_height,wave_direction,wave_period"
)

type MarineConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" default:"https://marine-api.open-meteo.com/v1/marine"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// MarineClient fetches the hourly wave series from the Open-Meteo marine
// endpoint, fixed to a 3-day horizon.
type MarineClient struct {
	baseURL string
	client  *httpx.Client
}

var _ contractx.ForecastProvider = (*MarineClient)(nil)

func NewMarineClient(cfg MarineConfig, opts ...httpx.Option) (*MarineClient, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		baseURL = defaultMarineURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid marine url: %w", err)
	}
	return &MarineClient{
		baseURL: baseURL,
		client:  httpx.NewClient(cfg.Timeout, opts...),
	}, nil
}

type marineResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		WaveHeight    []float64 `json:"wave_height"`
		WaveDirection []float64 `json:"wave_direction"`
		WavePeriod    []float64 `json:"wave_period"`
	} `json:"hourly"`
}

func (c *MarineClient) Forecast(ctx context.Context, latitude, longitude float64) (contractx.MarineForecast, int, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("hourly", hourlyVariable)
	query.Set("forecast_days", strconv.Itoa(forecastDays))

	var resp marineResponse
	attempts, err := c.client.GetJSON(ctx, c.baseURL, query, &resp)
	if err != nil {
		return contractx.MarineForecast{}, attempts, fmt.Errorf("marine forecast (attempts=%d): %w", attempts, err)
	}

	forecast := contractx.MarineForecast{
		Time:          resp.Hourly.Time,
		WaveHeight:    resp.Hourly.WaveHeight,
		WaveDirection: resp.Hourly.WaveDirection,
		WavePeriod:    resp.Hourly.WavePeriod,
	}
	if err := forecast.Validate(); err != nil {
		return contractx.MarineForecast{}, attempts, err
	}

	log.Info().
		Float64("latitude", latitude).
		Float64("longitude", longitude).
		Int("hours", forecast.Len()).
		Int("attempts", attempts).
		Msg("retrieved marine forecast")
	return forecast, attempts, nil
}
