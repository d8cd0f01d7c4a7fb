package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

// statusFor traduce el tipo de error de dominio a status HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInsufficientStock, domain.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError escribe el error de dominio como dto.ErrorResponse.
// Los errores internos no exponen la causa.
func respondError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		msg = "error interno"
	}
	var de *domain.Error
	if kind != domain.KindInternal && errors.As(err, &de) && de.Kind == kind {
		msg = de.Message
	}
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		msg = insufficient.Error()
	}
	return c.Status(statusFor(kind)).JSON(dto.ErrorResponse{Code: string(kind), Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: msg})
}
