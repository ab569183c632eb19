package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/internal/application/tags"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
)

// SettlementHandler expone cada paso del motor para el orquestador externo.
type SettlementHandler struct {
	classify *settlement.ClassifyPayerUseCase
	charge   *settlement.CalculateChargeUseCase
	debit    *settlement.DebitTagUseCase
	record   *settlement.RecordSettlementUseCase
	complete *settlement.CompletePendingUseCase
}

// NewSettlementHandler construye el handler.
func NewSettlementHandler(
	classify *settlement.ClassifyPayerUseCase,
	charge *settlement.CalculateChargeUseCase,
	debit *settlement.DebitTagUseCase,
	record *settlement.RecordSettlementUseCase,
	complete *settlement.CompletePendingUseCase,
) *SettlementHandler {
	return &SettlementHandler{classify: classify, charge: charge, debit: debit, record: record, complete: complete}
}

// Classify godoc
// @Summary      Clasificar pagador
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClassifyRequest  true  "Placa y tag opcional"
// @Success      200   {object}  dto.ClassifyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/settlement/classify [post]
func (h *SettlementHandler) Classify(c *fiber.Ctx) error {
	var in dto.ClassifyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.classify.ClassifyPayer(c.UserContext(), settlement.ClassifyInput{
		EventID:     in.EventID,
		Plate:       in.Plate,
		TagID:       in.TagID,
		TollPointID: in.TollPointID,
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.ClassifyResponse{
		EventID:    in.EventID,
		Plate:      in.Plate,
		PayerClass: out.PayerClass.String(),
	}
	if out.Account != nil {
		resp.Account = toAccountResponse(out.Account)
	}
	if out.Tag != nil {
		resp.Tag = tags.ToTagResponse(out.Tag)
	}
	if out.TollPoint != nil {
		resp.TollPoint = toTollPointResponse(out.TollPoint)
	}
	return c.JSON(resp)
}

// Charge godoc
// @Summary      Calcular cargo
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChargeRequest  true  "Tipo de pagador y peaje"
// @Success      200   {object}  dto.ChargeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settlement/charge [post]
func (h *SettlementHandler) Charge(c *fiber.Ctx) error {
	var in dto.ChargeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	class, err := entity.ParsePayerClass(in.PayerClass)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.charge.CalculateCharge(c.UserContext(), class, in.TollPointID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toChargeResponse(in.EventID, in.TollPointID, out))
}

// Debit godoc
// @Summary      Debitar tag prepago
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DebitRequest  true  "Tag, monto y transacción"
// @Success      200   {object}  dto.DebitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/settlement/debit [post]
func (h *SettlementHandler) Debit(c *fiber.Ctx) error {
	var in dto.DebitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.debit.DebitTag(c.UserContext(), settlement.DebitInput{
		TagID:         in.TagID,
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
		Timestamp:     timeOrZero(in.Timestamp),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDebitResponse(out))
}

// Record godoc
// @Summary      Registrar liquidación
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordRequest  true  "Evento clasificado y tasado"
// @Success      201   {object}  dto.RecordResponse
// @Success      200   {object}  dto.RecordResponse  "evento ya registrado"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settlement/record [post]
func (h *SettlementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	class, err := entity.ParsePayerClass(in.PayerClass)
	if err != nil {
		return respondError(c, err)
	}
	ev := settlement.SettlementEvent{
		EventID:     in.EventID,
		Plate:       in.Plate,
		TollPointID: in.TollPointID,
		PayerClass:  class,
		CrossedAt:   timeOrZero(in.Timestamp),
		Charge:      fromChargeDTO(class, in.Charge),
		TagID:       in.TagID,
	}
	if in.Debit != nil {
		ev.Debit = fromDebitDTO(*in.Debit)
	}
	out, err := h.record.RecordSettlement(c.UserContext(), ev)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if out.Duplicate {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.RecordResponse{
		TransactionID:   out.TransactionID,
		InvoiceID:       out.InvoiceID,
		Status:          out.Status,
		RequiresPayment: out.RequiresPayment,
		Duplicate:       out.Duplicate,
	})
}

// Complete godoc
// @Summary      Completar transacción pendiente
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        event_id  path  string               true   "ID del evento"
// @Param        body      body  dto.CompleteRequest  false  "Método de pago y fecha"
// @Success      200       {object}  dto.CompleteResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Failure      409       {object}  dto.ErrorResponse
// @Router       /api/transactions/{event_id}/complete [post]
func (h *SettlementHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.complete.CompletePendingTransaction(c.UserContext(), settlement.CompleteInput{
		EventID:       c.Params("event_id"),
		PaymentMethod: in.PaymentMethod,
		PaidAt:        timeOrZero(in.PaidAt),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CompleteResponse{
		EventID:          out.EventID,
		Plate:            out.Plate,
		InvoiceID:        out.InvoiceID,
		Amount:           out.Amount,
		TagPaid:          out.TagPaid,
		LateFee:          out.LateFee,
		TotalWithLateFee: out.TotalWithLateFee,
		MinutesElapsed:   out.MinutesElapsed,
		Currency:         out.Currency,
		CompletedAt:      out.CompletedAt,
	})
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func toAccountResponse(a *entity.Account) *dto.AccountResponse {
	return &dto.AccountResponse{
		Plate:             a.Plate,
		OwnerName:         a.OwnerName,
		Email:             a.Email,
		Phone:             a.Phone,
		RegistrationClass: a.RegistrationClass,
		TagID:             a.TagID,
	}
}

func toTollPointResponse(tp *entity.TollPoint) *dto.TollPointResponse {
	return &dto.TollPointResponse{
		ID:              tp.ID,
		Name:            tp.Name,
		Location:        tp.Location,
		BaseFee:         tp.BaseFee,
		TagFee:          tp.TagFee,
		RegisteredFee:   tp.RegisteredFee,
		UnregisteredFee: tp.UnregisteredFee,
	}
}

func toChargeResponse(eventID, tollPointID string, ch domainsettlement.Charge) dto.ChargeResponse {
	return dto.ChargeResponse{
		EventID:     eventID,
		PayerClass:  ch.PayerClass.String(),
		TollPointID: tollPointID,
		AppliedFee:  ch.AppliedFee,
		Discount:    ch.Discount,
		Subtotal:    ch.Subtotal,
		TaxRate:     ch.TaxRate,
		Tax:         ch.Tax,
		Total:       ch.Total,
		Currency:    ch.Currency,
	}
}

func fromChargeDTO(class entity.PayerClass, in dto.ChargeResponse) domainsettlement.Charge {
	return domainsettlement.Charge{
		PayerClass: class,
		AppliedFee: in.AppliedFee,
		Discount:   in.Discount,
		Subtotal:   in.Subtotal,
		Tax:        in.Tax,
		Total:      in.Total,
		TaxRate:    in.TaxRate,
		Currency:   in.Currency,
	}
}

func toDebitResponse(r *settlement.DebitResult) dto.DebitResponse {
	return dto.DebitResponse{
		TagID:           r.TagID,
		TransactionID:   r.TransactionID,
		PreviousBalance: r.PreviousBalance,
		NewBalance:      r.NewBalance,
		Debt:            r.Debt,
		DebtIncrease:    r.DebtIncrease,
		LateFee:         r.LateFee,
		HasDebt:         r.HasDebt,
		Replayed:        r.Replayed,
	}
}

func fromDebitDTO(in dto.DebitResponse) *settlement.DebitResult {
	return &settlement.DebitResult{
		TagID:           in.TagID,
		TransactionID:   in.TransactionID,
		PreviousBalance: in.PreviousBalance,
		NewBalance:      in.NewBalance,
		Debt:            in.Debt,
		DebtIncrease:    in.DebtIncrease,
		LateFee:         in.LateFee,
		HasDebt:         in.HasDebt,
		Replayed:        in.Replayed,
	}
}
