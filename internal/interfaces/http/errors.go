package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/domain"
)

// errorMapping relaciona un error de dominio con su estado HTTP y código.
type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: se evalúa el primero que coincida con errors.Is.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInvalidTollPoint, fiber.StatusBadRequest, "INVALID_TOLL_POINT"},
	{domain.ErrAccountNotFound, fiber.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrTagNotFound, fiber.StatusNotFound, "TAG_NOT_FOUND"},
	{domain.ErrTollPointNotFound, fiber.StatusNotFound, "TOLL_POINT_NOT_FOUND"},
	{domain.ErrTransactionNotFound, fiber.StatusNotFound, "TRANSACTION_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidTag, fiber.StatusConflict, "INVALID_TAG"},
	{domain.ErrAlreadySettled, fiber.StatusConflict, "ALREADY_SETTLED"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConcurrentUpdateConflict, fiber.StatusConflict, "CONCURRENT_UPDATE"},
}

// respondError traduce el error al cuerpo dto.ErrorResponse. Cualquier error no clasificado
// es una falla de dependencia y se informa como 503 reintentable.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DEPENDENCY_UNAVAILABLE", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
