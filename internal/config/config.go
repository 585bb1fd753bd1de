package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Predictor kinds accepted in PREDICTOR.
const (
	PredictorOffset = "offset"
	PredictorModel  = "model"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds every outbound geocoding/forecast call.
	HTTPTimeout time.Duration

	GeocodingURL         string
	ForecastURL          string
	GoogleGeocoderAPIKey string // selects the Google geocoder when set

	ForecastDays       int
	HourlyDefaultCount int

	Predictor       string
	PredictorOffset float64
	ModelPath       string

	RainScheme     string
	RainThresholds weather.RainThresholds

	CORSAllowOrigins string

	// HealthProbeInterval controls the upstream probe; 0 disables it.
	HealthProbeInterval time.Duration
	HealthProbePlace    string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("GEOCODING_URL", "")
	v.SetDefault("FORECAST_URL", "")
	v.SetDefault("GOOGLE_GEOCODER_API_KEY", "")
	v.SetDefault("FORECAST_DAYS", weather.DefaultForecastDays)
	v.SetDefault("HOURLY_DEFAULT_COUNT", weather.DefaultHourlyCount)
	v.SetDefault("PREDICTOR", PredictorOffset)
	v.SetDefault("PREDICTOR_OFFSET", weather.DefaultPredictorOffset)
	v.SetDefault("MODEL_PATH", "")
	v.SetDefault("RAIN_SCHEME", weather.RainSchemeTwoLevel)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("HEALTH_PROBE_INTERVAL", "5m")
	v.SetDefault("HEALTH_PROBE_PLACE", "Thiruvananthapuram")
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                 v.GetString("PORT"),
		GeocodingURL:         v.GetString("GEOCODING_URL"),
		ForecastURL:          v.GetString("FORECAST_URL"),
		GoogleGeocoderAPIKey: v.GetString("GOOGLE_GEOCODER_API_KEY"),
		Predictor:            strings.ToLower(strings.TrimSpace(v.GetString("PREDICTOR"))),
		ModelPath:            v.GetString("MODEL_PATH"),
		RainScheme:           strings.ToLower(strings.TrimSpace(v.GetString("RAIN_SCHEME"))),
		CORSAllowOrigins:     v.GetString("CORS_ALLOW_ORIGINS"),
		HealthProbePlace:     v.GetString("HEALTH_PROBE_PLACE"),
	}

	var err error
	if cfg.ForecastDays, err = intValue(v, "FORECAST_DAYS"); err != nil {
		return nil, err
	}
	if cfg.HourlyDefaultCount, err = intValue(v, "HOURLY_DEFAULT_COUNT"); err != nil {
		return nil, err
	}
	if cfg.PredictorOffset, err = floatValue(v, "PREDICTOR_OFFSET"); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(v.GetString("HTTP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	cfg.HTTPTimeout = timeout

	probe, err := time.ParseDuration(v.GetString("HEALTH_PROBE_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_PROBE_INTERVAL: %w", err)
	}
	cfg.HealthProbeInterval = probe

	if cfg.ForecastDays < 1 || cfg.ForecastDays > 16 {
		return nil, fmt.Errorf("invalid FORECAST_DAYS %d: must be between 1 and 16", cfg.ForecastDays)
	}
	if cfg.HourlyDefaultCount < 1 {
		return nil, fmt.Errorf("invalid HOURLY_DEFAULT_COUNT %d: must be positive", cfg.HourlyDefaultCount)
	}

	switch cfg.Predictor {
	case PredictorOffset:
	case PredictorModel:
		if cfg.ModelPath == "" {
			return nil, fmt.Errorf("PREDICTOR=model requires MODEL_PATH")
		}
	default:
		return nil, fmt.Errorf("invalid PREDICTOR %q: use %q or %q", cfg.Predictor, PredictorOffset, PredictorModel)
	}

	thresholds, err := weather.DefaultRainThresholds(cfg.RainScheme)
	if err != nil {
		return nil, fmt.Errorf("invalid RAIN_SCHEME: %w", err)
	}
	overrides := map[string]*float64{
		"RAIN_PRECIPITATION_THRESHOLD": &thresholds.Precipitation,
		"RAIN_HUMIDITY_THRESHOLD":      &thresholds.Humidity,
		"RAIN_CLOUD_THRESHOLD":         &thresholds.CloudCover,
	}
	for key, dst := range overrides {
		if !v.IsSet(key) {
			continue
		}
		if *dst, err = floatValue(v, key); err != nil {
			return nil, err
		}
	}
	cfg.RainThresholds = thresholds

	return cfg, nil
}

// intValue reads key strictly; viper's GetInt maps garbage to 0.
func intValue(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(strings.TrimSpace(cast.ToString(v.Get(key))))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatValue(v *viper.Viper, key string) (float64, error) {
	f, err := cast.ToFloat64E(strings.TrimSpace(cast.ToString(v.Get(key))))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
