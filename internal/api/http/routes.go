package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// RouteConfig carries handler settings that are not part of the weather service.
type RouteConfig struct {
	// HourlyDefaultCount is used when /hourly has neither hours nor day_index.
	HourlyDefaultCount int
	// Upstream reports the latest upstream probe result for /health; may be nil.
	Upstream func() any
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, cfg RouteConfig) {
	if cfg.HourlyDefaultCount <= 0 {
		cfg.HourlyDefaultCount = weather.DefaultHourlyCount
	}

	currentWeather := func(c *fiber.Ctx) error {
		var req placeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.Place = strings.TrimSpace(req.Place)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.CurrentWeather(c.UserContext(), req.Place)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(report)
	}
	app.Post("/weather", currentWeather)
	app.Post("/current-weather", currentWeather)

	app.Get("/forecast7", func(c *fiber.Ctx) error {
		place, err := parsePlaceQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		days, err := service.DailyForecast(c.UserContext(), place)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"place":    place,
			"forecast": days,
		})
	})

	app.Get("/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := q.bind(c, cfg.HourlyDefaultCount); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if q.byDay {
			date, points, err := service.HourlyForDay(c.UserContext(), q.Place, q.DayIndex)
			if err != nil {
				return toHTTPError(err)
			}
			return c.JSON(fiber.Map{
				"place":           q.Place,
				"day_index":       q.DayIndex,
				"date":            date,
				"hourly_forecast": points,
			})
		}

		window, err := service.HourlyFromNow(c.UserContext(), q.Place, q.Hours)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(fiber.Map{
			"place":           q.Place,
			"hours":           q.Hours,
			"hourly_forecast": window,
		})
	})

	app.Get("/day-details", func(c *fiber.Ctx) error {
		var q dayQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := service.DayDetails(c.UserContext(), q.Place, q.DayIndex)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(summary)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":       "ok",
			"model_loaded": service.ModelLoaded(),
			"predictor":    service.PredictorName(),
			"rain_scheme":  service.RainScheme(),
		}
		if cfg.Upstream != nil {
			body["upstream"] = cfg.Upstream()
		}
		return c.JSON(body)
	})
}

// placeRequest is the JSON body of the current-weather endpoints.
type placeRequest struct {
	Place string `json:"place" validate:"required"`
}

func parsePlaceQuery(c *fiber.Ctx) (string, error) {
	place := strings.TrimSpace(c.Query("place"))
	if place == "" {
		return "", errors.New("place query parameter is required")
	}
	return place, nil
}

// hourlyQuery holds query parameters for the hourly endpoint. day_index
// selects a calendar day; otherwise hours selects a window starting now.
type hourlyQuery struct {
	Place    string `validate:"required"`
	Hours    int    `validate:"min=1,max=384"`
	DayIndex int    `validate:"min=0"`
	byDay    bool
}

func (h *hourlyQuery) bind(c *fiber.Ctx, defaultHours int) error {
	place, err := parsePlaceQuery(c)
	if err != nil {
		return err
	}
	h.Place = place

	h.Hours, _, err = parseIntQuery(c, "hours", defaultHours)
	if err != nil {
		return err
	}
	h.DayIndex, h.byDay, err = parseIntQuery(c, "day_index", 0)
	return err
}

// dayQuery holds query parameters for the day-details endpoint.
type dayQuery struct {
	Place    string `validate:"required"`
	DayIndex int    `validate:"min=0"`
}

func (d *dayQuery) bind(c *fiber.Ctx) error {
	place, err := parsePlaceQuery(c)
	if err != nil {
		return err
	}
	d.Place = place

	d.DayIndex, _, err = parseIntQuery(c, "day_index", 0)
	return err
}

// parseIntQuery returns the integer value of key, or def when it is absent.
// The boolean reports whether the parameter was present.
func parseIntQuery(c *fiber.Ctx, key string, def int) (int, bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, errors.New(key + " must be an integer")
	}
	return n, true, nil
}
