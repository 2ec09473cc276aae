package handlers

import (
	"errors"

	"esports-arena/logger"
	"esports-arena/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrSessionInvalid):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrGameAccountNotFound),
		errors.Is(err, services.ErrPaymentRequestNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrJoinInProgress),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrPaymentNotPending),
		errors.Is(err, services.ErrInvalidStatusTransition):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrNoGameAccount),
		errors.Is(err, services.ErrGameAccountRequired),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrIdempotencyKeyReused):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSpinCooldown):
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Join aborts also carry the step and reason; unmapped errors are
// logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status := ErrorToStatusCode(err)

	var je *services.JoinError
	if errors.As(err, &je) {
		body := fiber.Map{
			"error":       je.Error(),
			"step":        je.Step,
			"reason":      je.Err.Error(),
			"compensated": je.Compensated,
		}
		if je.Shortfall > 0 {
			body["shortfall"] = je.Shortfall
		}
		if status == fiber.StatusInternalServerError {
			log.Error("❌ [HTTP] join aborted", "path", c.Path(), "step", je.Step, "error", err)
		}
		return c.Status(status).JSON(body)
	}

	if status == fiber.StatusInternalServerError {
		log.Error("❌ [HTTP] request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{"error": "something went wrong, please try again"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// BindAndValidate parses the request body and validates it.
// Returns the populated struct, or writes a 400 response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(input); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed", "details": err.Error()})
	}
	return &input, nil
}
