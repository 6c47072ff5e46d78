package handler

import (
	"errors"

	"field-match/internal/delivery/http/middleware"
	"field-match/internal/engine"
	"field-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// mapEngineError translates the engine's error taxonomy into HTTP statuses.
// Every rejected command keeps a distinguishable kind; nothing is swallowed.
func mapEngineError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, engine.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, engine.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid transition", nil, err)
	case errors.Is(err, engine.ErrInvalidRecipient):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Invalid recipient", nil, err)
	case errors.Is(err, engine.ErrDuplicateRating):
		return middleware.NewAppError(fiber.StatusConflict, "Rating already exists", nil, err)
	case errors.Is(err, engine.ErrValidation):
		return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
