package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// KeralaDistricts maps the district names of Kerala to pre-recorded coordinates.
var KeralaDistricts = map[string]weather.Coordinate{
	"Thiruvananthapuram": {Latitude: 8.5241, Longitude: 76.9366},
	"Kollam":             {Latitude: 8.8932, Longitude: 76.6141},
	"Pathanamthitta":     {Latitude: 9.2648, Longitude: 76.7870},
	"Alappuzha":          {Latitude: 9.4981, Longitude: 76.3388},
	"Kottayam":           {Latitude: 9.5916, Longitude: 76.5222},
	"Idukki":             {Latitude: 9.8492, Longitude: 76.9770},
	"Ernakulam":          {Latitude: 9.9816, Longitude: 76.2999},
	"Thrissur":           {Latitude: 10.5276, Longitude: 76.2144},
	"Palakkad":           {Latitude: 10.7867, Longitude: 76.6548},
	"Malappuram":         {Latitude: 11.0732, Longitude: 76.0740},
	"Kozhikode":          {Latitude: 11.2588, Longitude: 75.7804},
	"Wayanad":            {Latitude: 11.6854, Longitude: 76.1320},
	"Kannur":             {Latitude: 11.8745, Longitude: 75.3704},
	"Kasaragod":          {Latitude: 12.4996, Longitude: 74.9869},
}

// StaticGeocoder answers exact, case-sensitive matches from a fixed table and
// delegates every other name to next.
type StaticGeocoder struct {
	table map[string]weather.Coordinate
	next  weather.Geocoder
}

// NewStaticGeocoder copies table so later changes to it have no effect.
func NewStaticGeocoder(table map[string]weather.Coordinate, next weather.Geocoder) *StaticGeocoder {
	t := make(map[string]weather.Coordinate, len(table))
	for name, c := range table {
		t[name] = c
	}
	return &StaticGeocoder{table: t, next: next}
}

func (g *StaticGeocoder) Name() string {
	if g.next == nil {
		return "static"
	}
	return "static+" + g.next.Name()
}

func (g *StaticGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinate, error) {
	if c, ok := g.table[place]; ok {
		return c, nil
	}
	if g.next == nil {
		return weather.Coordinate{}, fmt.Errorf("%w: %q", weather.ErrNotFound, place)
	}
	return g.next.Resolve(ctx, place)
}

// OpenMeteoGeocoder resolves place names with the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoGeocoder creates a geocoder for baseURL; an empty baseURL selects the public API.
func NewOpenMeteoGeocoder(client *http.Client, baseURL string, breaker BreakerConfig) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = openMeteoGeocodingURL
	}
	return &OpenMeteoGeocoder{
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo-geocoding", breaker),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return "openmeteo-geocoding"
}

type geocodingPayload struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
	} `json:"results"`
}

// Resolve returns the coordinate of the first search result for place.
func (g *OpenMeteoGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinate, error) {
	values := url.Values{}
	values.Set("name", place)
	values.Set("count", "1")

	body, err := getJSONBody(ctx, g.client, g.circuit, fmt.Sprintf("%s?%s", g.baseURL, values.Encode()))
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("openmeteo geocoding: %w", err)
	}

	var payload geocodingPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Coordinate{}, fmt.Errorf("%w: openmeteo geocoding: decode: %v", weather.ErrServiceUnavailable, err)
	}

	// A missing results key and an empty array both mean unresolved.
	if len(payload.Results) == 0 {
		return weather.Coordinate{}, fmt.Errorf("%w: %q", weather.ErrNotFound, place)
	}

	first := payload.Results[0]
	c := weather.Coordinate{Latitude: first.Latitude, Longitude: first.Longitude}
	if err := c.Validate(); err != nil {
		return weather.Coordinate{}, fmt.Errorf("%w: openmeteo geocoding: %v", weather.ErrServiceUnavailable, err)
	}

	log.Printf("DEBUG: geocoded %q to %s, %s (%f, %f)", place, first.Name, first.Country, c.Latitude, c.Longitude)
	return c, nil
}
