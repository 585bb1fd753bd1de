package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// GoogleGeocoder resolves place names with the Google Geocoding API.
// The underlying library keeps its API key in package state, so only one
// GoogleGeocoder should be configured per process.
type GoogleGeocoder struct {
	circuit *gobreaker.CircuitBreaker
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string, breaker BreakerConfig) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		circuit: newCircuitBreaker("google-geocoding", breaker),
		lookup:  geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Name() string {
	return "google-geocoding"
}

type googleResult struct {
	loc geocoder.Location
	err error
}

// Resolve geocodes place. The library call has no deadline of its own, so it
// runs in a goroutine and Resolve returns as soon as ctx is done.
func (g *GoogleGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinate, error) {
	done := make(chan googleResult, 1)
	go func() {
		res, err := g.circuit.Execute(func() (interface{}, error) {
			loc, err := g.lookup(geocoder.Address{City: place})
			if err != nil && isZeroResults(err) {
				// Unknown places are a valid answer, not an upstream failure.
				return nil, nil
			}
			return loc, err
		})
		if err != nil {
			done <- googleResult{err: err}
			return
		}
		if res == nil {
			done <- googleResult{err: weather.ErrNotFound}
			return
		}
		done <- googleResult{loc: res.(geocoder.Location)}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinate{}, fmt.Errorf("%w: google geocoding: %v", weather.ErrServiceUnavailable, ctx.Err())
	case r := <-done:
		if r.err == weather.ErrNotFound {
			return weather.Coordinate{}, fmt.Errorf("%w: %q", weather.ErrNotFound, place)
		}
		if r.err != nil {
			return weather.Coordinate{}, fmt.Errorf("%w: google geocoding: %v", weather.ErrServiceUnavailable, r.err)
		}
		c := weather.Coordinate{Latitude: r.loc.Latitude, Longitude: r.loc.Longitude}
		if err := c.Validate(); err != nil {
			return weather.Coordinate{}, fmt.Errorf("%w: google geocoding: %v", weather.ErrServiceUnavailable, err)
		}
		return c, nil
	}
}

// isZeroResults reports whether err is the library's "nothing matched" answer.
func isZeroResults(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "zero_results") || strings.Contains(msg, "no results")
}
