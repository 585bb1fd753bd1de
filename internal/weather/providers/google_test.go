package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func newTestGoogleGeocoder(lookup func(geocoder.Address) (geocoder.Location, error)) *GoogleGeocoder {
	return &GoogleGeocoder{
		circuit: newCircuitBreaker("google-test", DefaultBreakerConfig()),
		lookup:  lookup,
	}
}

func TestGoogleGeocoderResolve(t *testing.T) {
	var got geocoder.Address
	g := newTestGoogleGeocoder(func(a geocoder.Address) (geocoder.Location, error) {
		got = a
		return geocoder.Location{Latitude: 10.0889, Longitude: 77.0595}, nil
	})

	c, err := g.Resolve(context.Background(), "Munnar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.City != "Munnar" {
		t.Errorf("address = %+v", got)
	}
	if c != (weather.Coordinate{Latitude: 10.0889, Longitude: 77.0595}) {
		t.Errorf("coordinate = %+v", c)
	}
}

func TestGoogleGeocoderErrors(t *testing.T) {
	tests := map[string]struct {
		loc  geocoder.Location
		err  error
		want error
	}{
		"zero results": {err: errors.New("No results found."), want: weather.ErrNotFound},
		"status zero":  {err: errors.New("ZERO_RESULTS"), want: weather.ErrNotFound},
		"denied":       {err: errors.New("REQUEST_DENIED"), want: weather.ErrServiceUnavailable},
		"bad latitude": {loc: geocoder.Location{Latitude: 120}, want: weather.ErrServiceUnavailable},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			g := newTestGoogleGeocoder(func(geocoder.Address) (geocoder.Location, error) {
				return tt.loc, tt.err
			})
			if _, err := g.Resolve(context.Background(), "Nowhere"); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGoogleGeocoderHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	g := newTestGoogleGeocoder(func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := g.Resolve(ctx, "Slowtown"); !errors.Is(err, weather.ErrServiceUnavailable) {
		t.Fatalf("error = %v, want ErrServiceUnavailable", err)
	}
}
