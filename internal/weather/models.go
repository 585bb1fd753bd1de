package weather

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Coordinate is a geographic position resolved from a place name.
type Coordinate struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
}

// Validate reports whether the coordinate lies within valid latitude/longitude ranges.
func (c Coordinate) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinate (%f, %f): %v", c.Latitude, c.Longitude, err)
	}
	return nil
}

// Date is a calendar day without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" formatted date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes the date as "2006-01-02".
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HourlyObservation is one hourly entry of a provider time series.
// Time carries the provider-local location of the queried coordinate.
type HourlyObservation struct {
	Time          time.Time
	Temperature   float64
	FeelsLike     float64
	Humidity      float64 // percent, 0-100
	Precipitation float64 // mm
	CloudCover    float64 // percent, 0-100
	WindSpeed     float64
}

// DailyObservation is one daily entry of a provider time series.
type DailyObservation struct {
	Date    Date
	TempMax float64
	TempMin float64
}

// CurrentConditions is the live observation at the queried coordinate.
type CurrentConditions struct {
	Time          time.Time
	Temperature   float64
	FeelsLike     float64
	Humidity      float64
	Precipitation float64
	CloudCover    float64
	WindSpeed     float64
}

// Forecast is the parsed provider response for a single coordinate.
// Hourly and Daily are ordered ascending.
type Forecast struct {
	Coordinate Coordinate
	Location   *time.Location
	Current    CurrentConditions
	Hourly     []HourlyObservation
	Daily      []DailyObservation
}

// HourlyPoint is a reduced hourly entry for charting.
type HourlyPoint struct {
	Time        string  `json:"time"` // HH:MM
	Temperature float64 `json:"temperature"`
}

// HourlyWindow is a forward-looking slice of hourly points.
type HourlyWindow []HourlyPoint

// DaySummary aggregates the hourly observations of one calendar day.
type DaySummary struct {
	Date               Date          `json:"date"`
	FeelsLikeMax       float64       `json:"feels_like"`
	HumidityAvg        float64       `json:"humidity"`
	WindMax            float64       `json:"wind"`
	CloudAvg           float64       `json:"cloud"`
	PrecipitationTotal float64       `json:"precipitation"`
	Rain               bool          `json:"rain"`
	RainStatus         RainLabel     `json:"rain_status,omitempty"`
	HourlyPoints       []HourlyPoint `json:"hourly_points"`
}

// DayForecast is one entry of the multi-day forecast.
type DayForecast struct {
	Date    Date    `json:"date"`
	Weekday string  `json:"day"`
	TempMax float64 `json:"tmax"`
	TempMin float64 `json:"tmin"`
}

// LiveWeather is the rounded current observation returned to clients.
type LiveWeather struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	CloudCover    float64 `json:"cloud_cover"`
	WindSpeed     float64 `json:"wind_speed"`
	FeelsLike     float64 `json:"feels_like"`
}

// TomorrowPrediction holds the predicted average temperature and rain outlook.
type TomorrowPrediction struct {
	PredictedAvgTemperature float64   `json:"predicted_avg_temperature"`
	RainStatus              RainLabel `json:"rain_status"`
	Predictor               string    `json:"predictor"`
}

// CurrentReport is the response of the current-weather operation.
type CurrentReport struct {
	Place       string             `json:"place"`
	Coordinates Coordinate         `json:"coordinates"`
	Live        LiveWeather        `json:"live_weather"`
	Tomorrow    TomorrowPrediction `json:"tomorrow_prediction"`
}
