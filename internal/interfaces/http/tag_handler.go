package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/application/tags"
)

// TagHandler administra el tag prepago de una placa.
type TagHandler struct {
	uc *tags.TagUseCase
}

// NewTagHandler construye el handler.
func NewTagHandler(uc *tags.TagUseCase) *TagHandler {
	return &TagHandler{uc: uc}
}

// Issue godoc
// @Summary      Emitir tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        placa  path  string               true  "Placa"
// @Param        body   body  dto.IssueTagRequest  true  "Tag y saldo inicial"
// @Success      201    {object}  dto.TagResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/users/{placa}/tag [post]
func (h *TagHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueTagRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Issue(c.UserContext(), c.Params("placa"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Tag de la placa
// @Tags         tags
// @Produce      json
// @Param        placa  path  string  true  "Placa"
// @Success      200    {object}  dto.TagResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/users/{placa}/tag [get]
func (h *TagHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetByPlate(c.UserContext(), c.Params("placa"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TopUp godoc
// @Summary      Recargar saldo
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        placa  path  string            true  "Placa"
// @Param        body   body  dto.TopUpRequest  true  "Monto"
// @Success      200    {object}  dto.TagResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/users/{placa}/tag/topup [post]
func (h *TagHandler) TopUp(c *fiber.Ctx) error {
	var in dto.TopUpRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.TopUp(c.UserContext(), c.Params("placa"), in.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar tag
// @Tags         tags
// @Produce      json
// @Param        placa  path  string  true  "Placa"
// @Success      200    {object}  dto.TagResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/users/{placa}/tag [delete]
func (h *TagHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), c.Params("placa"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
