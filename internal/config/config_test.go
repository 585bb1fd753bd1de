package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func newViper(env map[string]string) *viper.Viper {
	v := viper.New()
	defaults(v)
	for k, val := range env {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("http timeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.ForecastDays != 7 || cfg.HourlyDefaultCount != 12 {
		t.Errorf("forecast days/hourly count = %d/%d, want 7/12", cfg.ForecastDays, cfg.HourlyDefaultCount)
	}
	if cfg.Predictor != PredictorOffset || cfg.PredictorOffset != 0.8 {
		t.Errorf("predictor = %q (%v), want offset (0.8)", cfg.Predictor, cfg.PredictorOffset)
	}
	if cfg.RainScheme != weather.RainSchemeTwoLevel {
		t.Errorf("rain scheme = %q, want %q", cfg.RainScheme, weather.RainSchemeTwoLevel)
	}
	if cfg.RainThresholds != weather.DefaultTwoLevelThresholds() {
		t.Errorf("rain thresholds = %+v, want two-level defaults", cfg.RainThresholds)
	}
	if cfg.HealthProbeInterval != 5*time.Minute {
		t.Errorf("probe interval = %v, want 5m", cfg.HealthProbeInterval)
	}
}

func TestRainThresholdOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]string{
		"RAIN_SCHEME":             "three-level",
		"RAIN_HUMIDITY_THRESHOLD": " 90 ",
		"PREDICTOR_OFFSET":        "1.5",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := weather.DefaultThreeLevelThresholds()
	want.Humidity = 90
	if cfg.RainThresholds != want {
		t.Fatalf("rain thresholds = %+v, want %+v", cfg.RainThresholds, want)
	}
	if cfg.PredictorOffset != 1.5 {
		t.Errorf("predictor offset = %v, want 1.5", cfg.PredictorOffset)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{"HTTP_TIMEOUT": "soon"}},
		{"zero timeout", map[string]string{"HTTP_TIMEOUT": "0s"}},
		{"bad probe interval", map[string]string{"HEALTH_PROBE_INTERVAL": "often"}},
		{"unknown predictor", map[string]string{"PREDICTOR": "oracle"}},
		{"model without path", map[string]string{"PREDICTOR": "model"}},
		{"unknown rain scheme", map[string]string{"RAIN_SCHEME": "five-level"}},
		{"forecast days out of range", map[string]string{"FORECAST_DAYS": "30"}},
		{"non-positive hourly count", map[string]string{"HOURLY_DEFAULT_COUNT": "0"}},
		{"non-numeric hourly count", map[string]string{"HOURLY_DEFAULT_COUNT": "twelve"}},
		{"non-numeric forecast days", map[string]string{"FORECAST_DAYS": "7d"}},
		{"non-numeric predictor offset", map[string]string{"PREDICTOR_OFFSET": "x"}},
		{"non-numeric humidity threshold", map[string]string{"RAIN_HUMIDITY_THRESHOLD": "abc"}},
		{"non-numeric cloud threshold", map[string]string{"RAIN_CLOUD_THRESHOLD": "high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := fromViper(newViper(tt.env)); err == nil {
				t.Fatalf("expected error for %v", tt.env)
			}
		})
	}
}
