package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/application/history"
)

// HistoryHandler consultas por placa y comprobantes.
type HistoryHandler struct {
	uc *history.HistoryUseCase
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(uc *history.HistoryUseCase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// Transactions godoc
// @Summary      Historial de transacciones
// @Tags         history
// @Produce      json
// @Param        placa             path   string  true   "Placa"
// @Param        status            query  string  false  "pending | completed"
// @Param        requires_payment  query  bool    false  "Solo con pago pendiente"
// @Param        limit             query  int     false  "Límite"  default(50)
// @Success      200  {object}  dto.TransactionHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/history/{placa}/transactions [get]
func (h *HistoryHandler) Transactions(c *fiber.Ctx) error {
	q := dto.HistoryQuery{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", dto.DefaultHistoryLimit),
	}
	if raw := c.Query("requires_payment"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "requires_payment debe ser true o false"})
		}
		q.RequiresPayment = &v
	}
	out, err := h.uc.Transactions(c.UserContext(), c.Params("placa"), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Invoices godoc
// @Summary      Historial de facturas
// @Tags         history
// @Produce      json
// @Param        placa  path   string  true   "Placa"
// @Param        limit  query  int     false  "Límite"  default(50)
// @Success      200    {object}  dto.InvoiceHistoryResponse
// @Router       /api/history/{placa}/invoices [get]
func (h *HistoryHandler) Invoices(c *fiber.Ctx) error {
	out, err := h.uc.Invoices(c.UserContext(), c.Params("placa"), c.QueryInt("limit", dto.DefaultHistoryLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Invoice godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *HistoryHandler) Invoice(c *fiber.Ctx) error {
	out, err := h.uc.Invoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Comprobante PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *HistoryHandler) ReceiptPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.ReceiptPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
