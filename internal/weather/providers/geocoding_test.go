package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// failingGeocoder fails the test if it is ever called.
type failingGeocoder struct{ t *testing.T }

func (f failingGeocoder) Name() string { return "failing" }

func (f failingGeocoder) Resolve(_ context.Context, place string) (weather.Coordinate, error) {
	f.t.Fatalf("network geocoder called for %q", place)
	return weather.Coordinate{}, nil
}

func TestStaticGeocoderTableHit(t *testing.T) {
	g := NewStaticGeocoder(KeralaDistricts, failingGeocoder{t})

	c, err := g.Resolve(context.Background(), "Ernakulam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (weather.Coordinate{Latitude: 9.9816, Longitude: 76.2999}) {
		t.Fatalf("coordinate = %+v", c)
	}
}

func TestStaticGeocoderDelegatesMisses(t *testing.T) {
	next := &stubGeocoder{coord: weather.Coordinate{Latitude: 51.5, Longitude: -0.12}}
	g := NewStaticGeocoder(KeralaDistricts, next)

	// Matching is case-sensitive, so a lower-case district name goes to the network.
	for _, place := range []string{"London", "ernakulam"} {
		if _, err := g.Resolve(context.Background(), place); err != nil {
			t.Fatalf("Resolve(%q): %v", place, err)
		}
	}
	if len(next.places) != 2 || next.places[1] != "ernakulam" {
		t.Fatalf("delegated places = %v", next.places)
	}

	if _, err := NewStaticGeocoder(KeralaDistricts, nil).Resolve(context.Background(), "London"); !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("table-only miss = %v, want ErrNotFound", err)
	}
}

type stubGeocoder struct {
	coord  weather.Coordinate
	places []string
}

func (s *stubGeocoder) Name() string { return "stub" }

func (s *stubGeocoder) Resolve(_ context.Context, place string) (weather.Coordinate, error) {
	s.places = append(s.places, place)
	return s.coord, nil
}

func TestOpenMeteoGeocoder(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      weather.Coordinate
		wantError error
	}{
		{
			name:   "first result",
			status: http.StatusOK,
			body:   `{"results":[{"name":"Munnar","latitude":10.0889,"longitude":77.0595,"country":"India"},{"name":"Other","latitude":1,"longitude":1}],"generationtime_ms":0.5}`,
			want:   weather.Coordinate{Latitude: 10.0889, Longitude: 77.0595},
		},
		{
			name:      "missing results key",
			status:    http.StatusOK,
			body:      `{"generationtime_ms":0.4}`,
			wantError: weather.ErrNotFound,
		},
		{
			name:      "empty results",
			status:    http.StatusOK,
			body:      `{"results":[]}`,
			wantError: weather.ErrNotFound,
		},
		{
			name:      "malformed json",
			status:    http.StatusOK,
			body:      `{"results":[`,
			wantError: weather.ErrServiceUnavailable,
		},
		{
			name:      "upstream error",
			status:    http.StatusInternalServerError,
			body:      `{"error":true}`,
			wantError: weather.ErrServiceUnavailable,
		},
		{
			name:      "out of range coordinate",
			status:    http.StatusOK,
			body:      `{"results":[{"latitude":123,"longitude":0}]}`,
			wantError: weather.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewOpenMeteoGeocoder(srv.Client(), srv.URL, DefaultBreakerConfig())
			c, err := g.Resolve(context.Background(), "Munnar Hills")

			if gotQuery != "count=1&name=Munnar+Hills" {
				t.Errorf("query = %q", gotQuery)
			}
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Fatalf("error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c != tt.want {
				t.Fatalf("coordinate = %+v, want %+v", c, tt.want)
			}
		})
	}
}

func TestOpenMeteoGeocoderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	g := NewOpenMeteoGeocoder(client, srv.URL, DefaultBreakerConfig())

	if _, err := g.Resolve(context.Background(), "Slowtown"); !errors.Is(err, weather.ErrServiceUnavailable) {
		t.Fatalf("error = %v, want ErrServiceUnavailable", err)
	}
}

func TestOpenMeteoGeocoderCircuitOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 2
	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL, cfg)

	for i := 0; i < 4; i++ {
		if _, err := g.Resolve(context.Background(), "Kochi"); !errors.Is(err, weather.ErrServiceUnavailable) {
			t.Fatalf("attempt %d: error = %v, want ErrServiceUnavailable", i, err)
		}
	}
	// Each failed call is a single request; after two the breaker short-circuits.
	if n := hits.Load(); n != 2 {
		t.Fatalf("upstream hits = %d, want 2", n)
	}
}
