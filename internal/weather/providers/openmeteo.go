package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	openMeteoTimeLayout  = "2006-01-02T15:04"
)

var (
	openMeteoHourlyFields  = []string{"temperature_2m", "apparent_temperature", "relative_humidity_2m", "precipitation", "cloud_cover", "wind_speed_10m"}
	openMeteoCurrentFields = openMeteoHourlyFields
	openMeteoDailyFields   = []string{"temperature_2m_max", "temperature_2m_min"}
)

// OpenMeteoProvider implements weather.Provider for the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider for baseURL; an empty baseURL selects the public API.
func NewOpenMeteoProvider(client *http.Client, baseURL string, breaker BreakerConfig) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = openMeteoForecastURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo-forecast", breaker),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// openMeteoSeries holds the index-aligned arrays of the hourly block.
type openMeteoSeries struct {
	Time                []string  `json:"time"`
	Temperature2m       []float64 `json:"temperature_2m"`
	ApparentTemperature []float64 `json:"apparent_temperature"`
	RelativeHumidity2m  []float64 `json:"relative_humidity_2m"`
	Precipitation       []float64 `json:"precipitation"`
	CloudCover          []float64 `json:"cloud_cover"`
	WindSpeed10m        []float64 `json:"wind_speed_10m"`
}

type openMeteoCurrent struct {
	Time                string  `json:"time"`
	Temperature2m       float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
	Precipitation       float64 `json:"precipitation"`
	CloudCover          float64 `json:"cloud_cover"`
	WindSpeed10m        float64 `json:"wind_speed_10m"`
}

type openMeteoDaily struct {
	Time             []string  `json:"time"`
	Temperature2mMax []float64 `json:"temperature_2m_max"`
	Temperature2mMin []float64 `json:"temperature_2m_min"`
}

type openMeteoForecastPayload struct {
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation"`
	Current              *openMeteoCurrent `json:"current"`
	Hourly               *openMeteoSeries  `json:"hourly"`
	Daily                *openMeteoDaily   `json:"daily"`
}

func (p *OpenMeteoProvider) forecastURL(c weather.Coordinate, days int) string {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	values.Set("hourly", strings.Join(openMeteoHourlyFields, ","))
	values.Set("current", strings.Join(openMeteoCurrentFields, ","))
	values.Set("daily", strings.Join(openMeteoDailyFields, ","))
	values.Set("forecast_days", strconv.Itoa(days))
	values.Set("timezone", "auto")

	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

// FetchForecast fetches current conditions and the hourly/daily series for c.
// Timestamps are localized to the coordinate's timezone as reported by Open-Meteo.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, c weather.Coordinate, days int) (weather.Forecast, error) {
	if err := c.Validate(); err != nil {
		return weather.Forecast{}, fmt.Errorf("%w: %v", weather.ErrInvalidInput, err)
	}
	if days <= 0 {
		days = weather.DefaultForecastDays
	}

	body, err := getJSONBody(ctx, p.client, p.circuit, p.forecastURL(c, days))
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast: %w", err)
	}

	var payload openMeteoForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("%w: openmeteo forecast: decode: %v", weather.ErrServiceUnavailable, err)
	}

	fc, err := payload.toForecast(c)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("%w: openmeteo forecast: %v", weather.ErrServiceUnavailable, err)
	}
	return fc, nil
}

// location returns the fixed offset Open-Meteo applied to every timestamp in
// the response. The IANA name in Timezone is not used: across a DST change it
// would disagree with the offset the series was rendered in.
func (p openMeteoForecastPayload) location() *time.Location {
	name := p.TimezoneAbbreviation
	if name == "" {
		name = "UTC" + strconv.Itoa(p.UTCOffsetSeconds/3600)
	}
	return time.FixedZone(name, p.UTCOffsetSeconds)
}

func (p openMeteoForecastPayload) toForecast(c weather.Coordinate) (weather.Forecast, error) {
	if p.Hourly == nil {
		return weather.Forecast{}, fmt.Errorf("response has no hourly block")
	}
	if p.Daily == nil {
		return weather.Forecast{}, fmt.Errorf("response has no daily block")
	}

	loc := p.location()

	hourly, err := p.Hourly.observations(loc)
	if err != nil {
		return weather.Forecast{}, err
	}
	daily, err := p.Daily.observations()
	if err != nil {
		return weather.Forecast{}, err
	}

	var current weather.CurrentConditions
	switch {
	case p.Current != nil:
		current, err = p.Current.conditions(loc)
		if err != nil {
			return weather.Forecast{}, err
		}
	case len(hourly) > 0:
		h := hourly[0]
		current = weather.CurrentConditions{
			Time:          h.Time,
			Temperature:   h.Temperature,
			FeelsLike:     h.FeelsLike,
			Humidity:      h.Humidity,
			Precipitation: h.Precipitation,
			CloudCover:    h.CloudCover,
			WindSpeed:     h.WindSpeed,
		}
	default:
		return weather.Forecast{}, fmt.Errorf("response has neither current nor hourly data")
	}

	return weather.Forecast{
		Coordinate: c,
		Location:   loc,
		Current:    current,
		Hourly:     hourly,
		Daily:      daily,
	}, nil
}

func (s openMeteoSeries) observations(loc *time.Location) ([]weather.HourlyObservation, error) {
	n := len(s.Time)
	columns := map[string][]float64{
		"temperature_2m":       s.Temperature2m,
		"apparent_temperature": s.ApparentTemperature,
		"relative_humidity_2m": s.RelativeHumidity2m,
		"precipitation":        s.Precipitation,
		"cloud_cover":          s.CloudCover,
		"wind_speed_10m":       s.WindSpeed10m,
	}
	for name, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("hourly %s has %d entries, time has %d", name, len(col), n)
		}
	}

	out := make([]weather.HourlyObservation, 0, n)
	for i, raw := range s.Time {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, raw, loc)
		if err != nil {
			return nil, fmt.Errorf("hourly time %q: %v", raw, err)
		}
		// Repeated labels are tolerated; only a series running backwards is rejected.
		if i > 0 && ts.Before(out[i-1].Time) {
			return nil, fmt.Errorf("hourly time %q is before %s", raw, out[i-1].Time.Format(openMeteoTimeLayout))
		}
		out = append(out, weather.HourlyObservation{
			Time:          ts,
			Temperature:   s.Temperature2m[i],
			FeelsLike:     s.ApparentTemperature[i],
			Humidity:      s.RelativeHumidity2m[i],
			Precipitation: s.Precipitation[i],
			CloudCover:    s.CloudCover[i],
			WindSpeed:     s.WindSpeed10m[i],
		})
	}
	return out, nil
}

func (d openMeteoDaily) observations() ([]weather.DailyObservation, error) {
	n := len(d.Time)
	if len(d.Temperature2mMax) != n || len(d.Temperature2mMin) != n {
		return nil, fmt.Errorf("daily series lengths differ: time %d, max %d, min %d",
			n, len(d.Temperature2mMax), len(d.Temperature2mMin))
	}

	out := make([]weather.DailyObservation, 0, n)
	for i, raw := range d.Time {
		date, err := weather.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("daily time %q: %v", raw, err)
		}
		out = append(out, weather.DailyObservation{
			Date:    date,
			TempMax: d.Temperature2mMax[i],
			TempMin: d.Temperature2mMin[i],
		})
	}
	return out, nil
}

func (c openMeteoCurrent) conditions(loc *time.Location) (weather.CurrentConditions, error) {
	ts, err := time.ParseInLocation(openMeteoTimeLayout, c.Time, loc)
	if err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("current time %q: %v", c.Time, err)
	}
	return weather.CurrentConditions{
		Time:          ts,
		Temperature:   c.Temperature2m,
		FeelsLike:     c.ApparentTemperature,
		Humidity:      c.RelativeHumidity2m,
		Precipitation: c.Precipitation,
		CloudCover:    c.CloudCover,
		WindSpeed:     c.WindSpeed10m,
	}, nil
}
