package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/evercare/scheduling/models"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// StatusFromError maps the engine's error taxonomy onto HTTP statuses:
// missing entities 404, malformed input 400, booking-rule violations 409.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrSlotUnavailable), errors.Is(err, models.ErrDoubleBooking):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail renders the error with its mapped status and a short message.
func Fail(c *fiber.Ctx, message string, err error) error {
	return c.Status(StatusFromError(err)).JSON(ErrorResponse{
		Message: message,
		Error:   err.Error(),
	})
}
