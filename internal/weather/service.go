package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
)

// DefaultForecastDays is the forecast horizon requested from the provider.
const DefaultForecastDays = 7

// Dependencies are the collaborators a Service is built from.
type Dependencies struct {
	Geocoder  Geocoder
	Provider  Provider
	Predictor Predictor
	Rain      RainClassifier
	Clock     clock.Clock

	// ForecastDays defaults to DefaultForecastDays.
	ForecastDays int
}

// Service resolves places, fetches forecasts and shapes them for the dashboard.
type Service struct {
	geocoder     Geocoder
	provider     Provider
	predictor    Predictor
	rain         RainClassifier
	clock        clock.Clock
	forecastDays int
}

// NewService creates a new Service. Missing rain classifier, predictor and
// clock fall back to the two-level scheme, the offset heuristic and the wall clock.
func NewService(deps Dependencies) *Service {
	s := &Service{
		geocoder:     deps.Geocoder,
		provider:     deps.Provider,
		predictor:    deps.Predictor,
		rain:         deps.Rain,
		clock:        deps.Clock,
		forecastDays: deps.ForecastDays,
	}
	if s.rain == nil {
		s.rain = TwoLevelRain{Thresholds: DefaultTwoLevelThresholds()}
	}
	if s.predictor == nil {
		s.predictor = NewOffsetPredictor(DefaultPredictorOffset)
	}
	if s.clock == nil {
		s.clock = clock.NewClock()
	}
	if s.forecastDays <= 0 {
		s.forecastDays = DefaultForecastDays
	}
	return s
}

// ModelLoaded reports whether the configured predictor is ready to serve.
func (s *Service) ModelLoaded() bool {
	return s.predictor.Ready()
}

// PredictorName returns the name of the configured predictor.
func (s *Service) PredictorName() string {
	return s.predictor.Name()
}

// RainScheme returns the name of the configured rain scheme.
func (s *Service) RainScheme() string {
	return s.rain.Scheme()
}

// Resolve geocodes place after trimming surrounding whitespace.
func (s *Service) Resolve(ctx context.Context, place string) (Coordinate, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Coordinate{}, fmt.Errorf("%w: place must not be empty", ErrInvalidInput)
	}
	if s.geocoder == nil {
		return Coordinate{}, fmt.Errorf("%w: no geocoder configured", ErrServiceUnavailable)
	}

	coord, err := s.geocoder.Resolve(ctx, place)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("ERROR: geocoder %s failed for %q: %v", s.geocoder.Name(), place, err)
		}
		return Coordinate{}, err
	}
	return coord, nil
}

func (s *Service) fetch(ctx context.Context, place string) (Coordinate, Forecast, error) {
	coord, err := s.Resolve(ctx, place)
	if err != nil {
		return Coordinate{}, Forecast{}, err
	}
	if s.provider == nil {
		return coord, Forecast{}, fmt.Errorf("%w: no weather provider configured", ErrServiceUnavailable)
	}

	fc, err := s.provider.FetchForecast(ctx, coord, s.forecastDays)
	if err != nil {
		log.Printf("ERROR: provider %s forecast failed for %q (%f, %f): %v",
			s.provider.Name(), place, coord.Latitude, coord.Longitude, err)
		return coord, Forecast{}, err
	}
	return coord, fc, nil
}

// localNow returns the current instant in the forecast's location.
func (s *Service) localNow(fc Forecast) time.Time {
	now := s.clock.Now()
	if fc.Location != nil {
		return now.In(fc.Location)
	}
	return now
}

// CurrentWeather returns the live observation at place together with a
// prediction of tomorrow's average temperature and a rain outlook.
func (s *Service) CurrentWeather(ctx context.Context, place string) (CurrentReport, error) {
	coord, fc, err := s.fetch(ctx, place)
	if err != nil {
		return CurrentReport{}, err
	}

	cur := fc.Current
	features := BuildFeatures(cur, s.localNow(fc))

	predicted, err := s.predictor.PredictTomorrowAvg(ctx, features)
	if err != nil {
		log.Printf("ERROR: predictor %s failed for %q: %v", s.predictor.Name(), place, err)
		if KindOf(err) != KindModelUnavailable && KindOf(err) != KindPredictionFailed {
			err = fmt.Errorf("%w: %v", ErrPredictionFailed, err)
		}
		return CurrentReport{}, err
	}

	return CurrentReport{
		Place:       strings.TrimSpace(place),
		Coordinates: coord,
		Live: LiveWeather{
			Temperature:   round(cur.Temperature, 1),
			Humidity:      round(cur.Humidity, 0),
			Precipitation: round(cur.Precipitation, 2),
			CloudCover:    round(cur.CloudCover, 0),
			WindSpeed:     round(cur.WindSpeed, 1),
			FeelsLike:     round(cur.FeelsLike, 1),
		},
		Tomorrow: TomorrowPrediction{
			PredictedAvgTemperature: round(predicted, 1),
			RainStatus:              s.rain.Classify(cur.Precipitation, cur.Humidity, cur.CloudCover),
			Predictor:               s.predictor.Name(),
		},
	}, nil
}

// DailyForecast returns one entry per provider day with rounded max/min temperatures.
func (s *Service) DailyForecast(ctx context.Context, place string) ([]DayForecast, error) {
	_, fc, err := s.fetch(ctx, place)
	if err != nil {
		return nil, err
	}

	out := make([]DayForecast, 0, len(fc.Daily))
	for _, d := range fc.Daily {
		out = append(out, DayForecast{
			Date:    d.Date,
			Weekday: d.Date.Weekday().String()[:3],
			TempMax: round(d.TempMax, 1),
			TempMin: round(d.TempMin, 1),
		})
	}
	return out, nil
}

// HourlyFromNow returns up to hours forward-looking hourly points for place.
func (s *Service) HourlyFromNow(ctx context.Context, place string, hours int) (HourlyWindow, error) {
	if hours < 0 {
		return nil, fmt.Errorf("%w: hours must be positive", ErrInvalidInput)
	}
	_, fc, err := s.fetch(ctx, place)
	if err != nil {
		return nil, err
	}
	return WindowFromNow(fc.Hourly, hours, s.localNow(fc)), nil
}

// HourlyForDay returns the hourly points of the day dayIndex days after today at place.
func (s *Service) HourlyForDay(ctx context.Context, place string, dayIndex int) (Date, []HourlyPoint, error) {
	if dayIndex < 0 {
		return Date{}, nil, fmt.Errorf("%w: day_index must not be negative", ErrInvalidInput)
	}
	_, fc, err := s.fetch(ctx, place)
	if err != nil {
		return Date{}, nil, err
	}
	target := DateOf(s.localNow(fc)).AddDays(dayIndex)
	return target, HourlyForDay(fc.Hourly, target), nil
}

// DayDetails summarizes the day dayIndex days after today at place.
func (s *Service) DayDetails(ctx context.Context, place string, dayIndex int) (DaySummary, error) {
	if dayIndex < 0 {
		return DaySummary{}, fmt.Errorf("%w: day_index must not be negative", ErrInvalidInput)
	}
	_, fc, err := s.fetch(ctx, place)
	if err != nil {
		return DaySummary{}, err
	}

	target := DateOf(s.localNow(fc)).AddDays(dayIndex)
	summary := SummarizeDay(fc.Hourly, target)
	summary.RainStatus = s.rain.Classify(summary.PrecipitationTotal, summary.HumidityAvg, summary.CloudAvg)
	return summary, nil
}

// Probe fetches a forecast for place and reports whether the upstream chain answered.
func (s *Service) Probe(ctx context.Context, place string) error {
	_, _, err := s.fetch(ctx, place)
	return err
}
