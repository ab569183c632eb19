package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/application/ingest"
)

// IngestHandler recibe los cruces de las casetas.
type IngestHandler struct {
	uc *ingest.IngestUseCase
}

// NewIngestHandler construye el handler.
func NewIngestHandler(uc *ingest.IngestUseCase) *IngestHandler {
	return &IngestHandler{uc: uc}
}

// Toll godoc
// @Summary      Webhook de cruce
// @Tags         ingest
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IngestRequest  true  "Cruce reportado"
// @Success      202   {object}  dto.IngestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/webhook/toll [post]
func (h *IngestHandler) Toll(c *fiber.Ctx) error {
	var in dto.IngestRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Ingest(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}
