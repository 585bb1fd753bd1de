package weather

import "fmt"

// RainLabel is a coarse rain-likelihood category.
type RainLabel string

const (
	RainHighChance RainLabel = "High chance of rain"
	RainLowChance  RainLabel = "Low chance of rain"

	RainLikely   RainLabel = "Rain likely"
	RainPossible RainLabel = "Possible rain"
	RainLow      RainLabel = "Low rain chance"
)

// Rain scheme names accepted by NewRainClassifier.
const (
	RainSchemeTwoLevel   = "two-level"
	RainSchemeThreeLevel = "three-level"
)

// RainThresholds are the strict lower bounds that trigger a rainier label.
type RainThresholds struct {
	Precipitation float64 // mm
	Humidity      float64 // percent
	CloudCover    float64 // percent
}

// RainClassifier maps a (precipitation, humidity, cloud cover) triple to a RainLabel.
type RainClassifier interface {
	Scheme() string
	Classify(precipitation, humidity, cloudCover float64) RainLabel
}

// TwoLevelRain labels rain as high chance when precipitation exceeds its
// threshold or when both humidity and cloud cover exceed theirs.
type TwoLevelRain struct {
	Thresholds RainThresholds
}

// DefaultTwoLevelThresholds are precipitation > 1.0, humidity > 80, cloud cover > 70.
func DefaultTwoLevelThresholds() RainThresholds {
	return RainThresholds{Precipitation: 1.0, Humidity: 80, CloudCover: 70}
}

func (r TwoLevelRain) Scheme() string { return RainSchemeTwoLevel }

func (r TwoLevelRain) Classify(precipitation, humidity, cloudCover float64) RainLabel {
	t := r.Thresholds
	if precipitation > t.Precipitation || (humidity > t.Humidity && cloudCover > t.CloudCover) {
		return RainHighChance
	}
	return RainLowChance
}

// ThreeLevelRain distinguishes measured precipitation from humid overcast conditions.
type ThreeLevelRain struct {
	Thresholds RainThresholds
}

// DefaultThreeLevelThresholds are precipitation > 0.1, humidity > 75, cloud cover > 60.
func DefaultThreeLevelThresholds() RainThresholds {
	return RainThresholds{Precipitation: 0.1, Humidity: 75, CloudCover: 60}
}

func (r ThreeLevelRain) Scheme() string { return RainSchemeThreeLevel }

func (r ThreeLevelRain) Classify(precipitation, humidity, cloudCover float64) RainLabel {
	t := r.Thresholds
	if precipitation > t.Precipitation {
		return RainLikely
	}
	if humidity > t.Humidity && cloudCover > t.CloudCover {
		return RainPossible
	}
	return RainLow
}

// DefaultRainThresholds returns the built-in thresholds of the named scheme.
func DefaultRainThresholds(scheme string) (RainThresholds, error) {
	switch scheme {
	case RainSchemeTwoLevel:
		return DefaultTwoLevelThresholds(), nil
	case RainSchemeThreeLevel:
		return DefaultThreeLevelThresholds(), nil
	default:
		return RainThresholds{}, fmt.Errorf("unknown rain scheme %q", scheme)
	}
}

// NewRainClassifier builds the classifier for the named scheme with the given thresholds.
func NewRainClassifier(scheme string, t RainThresholds) (RainClassifier, error) {
	switch scheme {
	case RainSchemeTwoLevel:
		return TwoLevelRain{Thresholds: t}, nil
	case RainSchemeThreeLevel:
		return ThreeLevelRain{Thresholds: t}, nil
	default:
		return nil, fmt.Errorf("unknown rain scheme %q", scheme)
	}
}
