package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// toHTTPError maps a service error to a Fiber error with a fixed status.
func toHTTPError(err error) error {
	switch weather.KindOf(err) {
	case weather.KindInvalidInput:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case weather.KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, "Place not found")
	case weather.KindServiceUnavailable:
		return fiber.NewError(fiber.StatusServiceUnavailable, "weather service unavailable")
	case weather.KindModelUnavailable:
		return fiber.NewError(fiber.StatusInternalServerError, "prediction model unavailable")
	case weather.KindPredictionFailed:
		return fiber.NewError(fiber.StatusInternalServerError, "prediction failed")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
