package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/bluecastapp/bluecast/agent/contract"
)

func TestGeocodingLookupResolvesFirstMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "San Sebastián" {
			t.Errorf("unexpected query: %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("expected limit=1, got %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("expected format=jsonv2, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "bluecast-test" {
			t.Errorf("unexpected user agent: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"43.3183","lon":"-1.9812","display_name":"San Sebastián, Gipuzkoa"}]`))
	}))
	defer srv.Close()

	client, err := NewGeocodingClient(GeocodingConfig{
		URL:       srv.URL,
		UserAgent: "bluecast-test",
		Timeout:   time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords, attempts, err := client.Lookup(context.Background(), "San Sebastián")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
	if coords.Latitude != 43.3183 || coords.Longitude != -1.9812 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
	if coords.Place != "San Sebastián, Gipuzkoa" {
		t.Fatalf("unexpected place: %q", coords.Place)
	}
}

func TestGeocodingLookupNoCandidateIsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewGeocodingClient(GeocodingConfig{URL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = client.Lookup(context.Background(), "Atlantis")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGeocodingLookupRejectsEmptyPlace(t *testing.T) {
	t.Parallel()

	client, err := NewGeocodingClient(GeocodingConfig{URL: "http://localhost:1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = client.Lookup(context.Background(), "  ")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGeocodingLookupMalformedCoordinates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"not-a-number","lon":"-1.9812","display_name":"x"}]`))
	}))
	defer srv.Close()

	client, err := NewGeocodingClient(GeocodingConfig{URL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = client.Lookup(context.Background(), "somewhere")
	if !errors.Is(err, contractx.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}
