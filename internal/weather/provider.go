package weather

import (
	"context"
)

// Geocoder resolves a free-text place name to a coordinate.
// It returns ErrNotFound when the place cannot be resolved and
// ErrServiceUnavailable for any other upstream failure.
type Geocoder interface {
	Name() string
	Resolve(ctx context.Context, place string) (Coordinate, error)
}

// Provider fetches current conditions plus hourly and daily series for a coordinate.
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, c Coordinate, days int) (Forecast, error)
}
