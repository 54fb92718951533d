package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var te *domain.TransitionError
	if errors.As(err, &te) {
		return c.Status(fiber.StatusConflict).JSON(dto.TransitionErrorResponse{
			Code:       "INVALID_TRANSITION",
			Message:    err.Error(),
			Action:     te.Action,
			FromStatus: te.From,
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrPrecondition):
		status, code = fiber.StatusUnprocessableEntity, "PRECONDITION_FAILED"
	case errors.Is(err, domain.ErrCompanyUserMissing):
		status, code = fiber.StatusUnprocessableEntity, "COMPANY_USER_MISSING"
	case errors.Is(err, domain.ErrSweepInProgress):
		status, code = fiber.StatusLocked, "SWEEP_IN_PROGRESS"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "CONFLICT"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
