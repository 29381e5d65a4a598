package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/application/dto"
	"github.com/jhoicas/control-stock/internal/domain"
)

// respondError traduce errores de dominio a códigos HTTP.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var insufficient *domain.InsufficientStockError
	var rule *domain.ConfigRuleError

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.As(err, &insufficient):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.As(err, &rule):
		status, code = fiber.StatusUnprocessableEntity, "INVALID_CONFIGURATION"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrResolution):
		status, code = fiber.StatusUnprocessableEntity, "UNRESOLVED_PRODUCT"
	case errors.Is(err, domain.ErrLockNotObtained):
		status, code = fiber.StatusConflict, "AUDIT_IN_PROGRESS"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnavailable):
		status, code = fiber.StatusServiceUnavailable, "UNAVAILABLE"
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error atendiendo petición")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
