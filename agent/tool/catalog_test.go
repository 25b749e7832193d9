package tool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
	statex "github.com/bluecastapp/bluecast/agent/state"
	httpx "github.com/bluecastapp/bluecast/pkg/httpx"
	openmeteox "github.com/bluecastapp/bluecast/pkg/openmeteo"
)

type fakeGeocoder struct {
	coords   contractx.Coordinates
	attempts int
	err      error
}

func (f *fakeGeocoder) Lookup(ctx context.Context, place string) (contractx.Coordinates, int, error) {
	attempts := f.attempts
	if attempts < 1 {
		attempts = 1
	}
	if f.err != nil {
		return contractx.Coordinates{}, attempts, f.err
	}
	return f.coords, attempts, nil
}

type fakeForecasts struct {
	forecast contractx.MarineForecast
	attempts int
	err      error
}

func (f *fakeForecasts) Forecast(ctx context.Context, lat, lon float64) (contractx.MarineForecast, int, error) {
	attempts := f.attempts
	if attempts < 1 {
		attempts = 1
	}
	if f.err != nil {
		return contractx.MarineForecast{}, attempts, f.err
	}
	return f.forecast, attempts, nil
}

func newExecutorForTest(t *testing.T, geocoder contractx.Geocoder, forecasts contractx.ForecastProvider) (Executor, *statex.SessionState) {
	t.Helper()
	st := statex.NewSessionState("user-1", "session-1", time.Now())
	return NewExecutor(geocoder, forecasts, st), st
}

func TestInfosDescribesWholeCatalog(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(infos))
	}
	want := []string{ToolSavePreference, ToolCheckPreferences, ToolGetCoordinates, ToolGetMarineForecast}
	for i, name := range want {
		if infos[i].Name != name {
			t.Fatalf("tool %d = %q, want %q", i, infos[i].Name, name)
		}
	}
}

func TestExecutorSavePreference(t *testing.T) {
	t.Parallel()

	exec, st := newExecutorForTest(t, &fakeGeocoder{}, &fakeForecasts{})

	out, err := exec(context.Background(), ToolSavePreference, map[string]any{
		"field": "wave_height",
		"value": "1-2m",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	confirmation, ok := out.Result.(contractx.SaveConfirmation)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if confirmation.Action != "save_wave_height" || confirmation.Value != "1-2m" {
		t.Fatalf("unexpected confirmation: %+v", confirmation)
	}
	if v, _ := st.Preference(contractx.FieldWaveHeight); v != "1-2m" {
		t.Fatalf("session not updated: %q", v)
	}
}

func TestExecutorSavePreferenceRejectsUnknownField(t *testing.T) {
	t.Parallel()

	exec, _ := newExecutorForTest(t, &fakeGeocoder{}, &fakeForecasts{})

	out, err := exec(context.Background(), ToolSavePreference, map[string]any{
		"field": "board_color",
		"value": "red",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, statex.ErrUnknownField) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if out.Error == "" || out.Attempts != 1 {
		t.Fatalf("record must capture the failure: %+v", out)
	}
}

func TestExecutorCheckPreferences(t *testing.T) {
	t.Parallel()

	exec, st := newExecutorForTest(t, &fakeGeocoder{}, &fakeForecasts{})
	if _, err := st.SetPreference(contractx.FieldWaveHeight, "1m"); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}

	out, err := exec(context.Background(), ToolCheckPreferences, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, ok := out.Result.(contractx.Completeness)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if set.Complete {
		t.Fatal("profile must be incomplete")
	}
	if set.Collected["wave_height"] != "1m" {
		t.Fatalf("unexpected collected view: %v", set.Collected)
	}
}

func TestExecutorGetCoordinates(t *testing.T) {
	t.Parallel()

	exec, _ := newExecutorForTest(t, &fakeGeocoder{
		coords: contractx.Coordinates{Latitude: 43.3183, Longitude: -1.9812, Place: "San Sebastián"},
	}, &fakeForecasts{})

	out, err := exec(context.Background(), ToolGetCoordinates, map[string]any{"place": "San Sebastián"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coords, ok := out.Result.(contractx.Coordinates)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if coords.Place != "San Sebastián" {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
	if out.Attempts != 1 {
		t.Fatalf("unexpected attempts: %d", out.Attempts)
	}
}

func TestExecutorGetMarineForecastRecordsExhaustedAttempts(t *testing.T) {
	t.Parallel()

	exec, _ := newExecutorForTest(t, &fakeGeocoder{}, &fakeForecasts{
		err: &httpx.ExhaustedError{Attempts: 5, Last: errors.New("status 503")},
	})

	out, err := exec(context.Background(), ToolGetMarineForecast, map[string]any{
		"latitude":  43.3,
		"longitude": -1.98,
	})
	if !errors.Is(err, httpx.ErrExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if out.Attempts != 5 {
		t.Fatalf("expected 5 attempts on the record, got %d", out.Attempts)
	}
	if out.Error == "" {
		t.Fatal("record must carry the failure message")
	}
}

func TestExecutorRecordsAttemptsWhenCallRecoversAfterRetries(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"43.3183","lon":"-1.9812","display_name":"Zurriola, San Sebastián"}]`))
	}))
	defer srv.Close()

	geocoder, err := openmeteox.NewGeocodingClient(
		openmeteox.GeocodingConfig{URL: srv.URL, UserAgent: "bluecast-test"},
		httpx.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }),
	)
	if err != nil {
		t.Fatalf("NewGeocodingClient() error = %v", err)
	}

	exec, _ := newExecutorForTest(t, geocoder, &fakeForecasts{})
	out, err := exec(context.Background(), ToolGetCoordinates, map[string]any{"place": "Zurriola"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Attempts != 3 {
		t.Fatalf("record attempts = %d, want 3", out.Attempts)
	}
	coords, ok := out.Result.(contractx.Coordinates)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if coords.Latitude != 43.3183 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	t.Parallel()

	exec, _ := newExecutorForTest(t, &fakeGeocoder{}, &fakeForecasts{})

	out, err := exec(context.Background(), "summon_kraken", nil)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if out.Tool != "summon_kraken" || out.Error == "" {
		t.Fatalf("unexpected record: %+v", out)
	}
}

func TestExecutorMissingArgs(t *testing.T) {
	t.Parallel()

	exec, _ := newExecutorForTest(t, &fakeGeocoder{}, &fakeForecasts{})

	if _, err := exec(context.Background(), ToolGetCoordinates, map[string]any{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := exec(context.Background(), ToolGetMarineForecast, map[string]any{"latitude": "north"}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
