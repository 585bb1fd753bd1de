package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound geocoding and forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	breaker := providers.DefaultBreakerConfig()

	// Network geocoder behind the static district table.
	var remote weather.Geocoder = providers.NewOpenMeteoGeocoder(httpClient, cfg.GeocodingURL, breaker)
	if cfg.GoogleGeocoderAPIKey != "" {
		remote = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey, breaker)
	}
	geocoder := providers.NewStaticGeocoder(providers.KeralaDistricts, remote)

	rain, err := weather.NewRainClassifier(cfg.RainScheme, cfg.RainThresholds)
	if err != nil {
		log.Fatalf("failed to build rain classifier: %v", err)
	}

	service := weather.NewService(weather.Dependencies{
		Geocoder:     geocoder,
		Provider:     providers.NewOpenMeteoProvider(httpClient, cfg.ForecastURL, breaker),
		Predictor:    buildPredictor(cfg),
		Rain:         rain,
		Clock:        clock.NewClock(),
		ForecastDays: cfg.ForecastDays,
	})
	log.Printf("INFO: geocoder=%s predictor=%s rain_scheme=%s model_loaded=%t",
		geocoder.Name(), service.PredictorName(), service.RainScheme(), service.ModelLoaded())

	// Periodic upstream probe reported by /health.
	sched := scheduler.New(service, cfg.HealthProbePlace, cfg.HealthProbeInterval, 2*cfg.HTTPTimeout)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          3 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))

	httpapi.RegisterRoutes(app, service, httpapi.RouteConfig{
		HourlyDefaultCount: cfg.HourlyDefaultCount,
		Upstream: func() any {
			return sched.Status()
		},
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// buildPredictor loads the model artifact once. A model that fails to load is
// reported by /health and makes predictions fail instead of stopping startup.
func buildPredictor(cfg *config.AppConfig) weather.Predictor {
	if cfg.Predictor != config.PredictorModel {
		return weather.NewOffsetPredictor(cfg.PredictorOffset)
	}

	m, err := weather.LoadLinearModel(cfg.ModelPath)
	if err != nil {
		log.Printf("ERROR: failed to load model: %v", err)
		return weather.NewModelPredictor(nil)
	}
	log.Printf("INFO: loaded model %q from %s", m.Name, cfg.ModelPath)
	return weather.NewModelPredictor(m)
}
