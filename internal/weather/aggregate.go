package weather

import (
	"math"
	"time"
)

// DefaultHourlyCount is the window length used when callers do not ask for one.
const DefaultHourlyCount = 12

// SummarizeDay reduces the hourly observations falling on target into a DaySummary.
// Observations are matched by their local calendar date. If none match, every
// aggregate is zero and HourlyPoints is empty.
func SummarizeDay(hourly []HourlyObservation, target Date) DaySummary {
	summary := DaySummary{
		Date:         target,
		HourlyPoints: []HourlyPoint{},
	}

	var (
		sumHumidity float64
		sumCloud    float64
		sumPrecip   float64
		n           int
	)

	for _, h := range hourly {
		if DateOf(h.Time) != target {
			continue
		}

		if n == 0 || h.FeelsLike > summary.FeelsLikeMax {
			summary.FeelsLikeMax = h.FeelsLike
		}
		if n == 0 || h.WindSpeed > summary.WindMax {
			summary.WindMax = h.WindSpeed
		}
		sumHumidity += h.Humidity
		sumCloud += h.CloudCover
		sumPrecip += h.Precipitation
		n++

		summary.HourlyPoints = append(summary.HourlyPoints, HourlyPoint{
			Time:        h.Time.Format("15:04"),
			Temperature: h.Temperature,
		})
	}

	if n == 0 {
		return summary
	}

	summary.HumidityAvg = sumHumidity / float64(n)
	summary.CloudAvg = sumCloud / float64(n)
	summary.PrecipitationTotal = sumPrecip
	summary.Rain = sumPrecip > 0

	return summary
}

// HourlyForDay returns the (HH:MM, temperature) points of the observations on target.
func HourlyForDay(hourly []HourlyObservation, target Date) []HourlyPoint {
	return SummarizeDay(hourly, target).HourlyPoints
}

// WindowFromNow returns up to count hourly points at or after now, in order.
// A non-positive count selects DefaultHourlyCount. Temperatures are rounded to one decimal.
func WindowFromNow(hourly []HourlyObservation, count int, now time.Time) HourlyWindow {
	if count <= 0 {
		count = DefaultHourlyCount
	}

	window := make(HourlyWindow, 0, min(count, len(hourly)))
	for _, h := range hourly {
		if len(window) >= count {
			break
		}
		if h.Time.Before(now) {
			continue
		}
		window = append(window, HourlyPoint{
			Time:        h.Time.Format("15:04"),
			Temperature: round(h.Temperature, 1),
		})
	}
	return window
}

// round rounds v to the given number of decimal places.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
