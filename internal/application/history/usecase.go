// Package history expone las consultas por placa (transacciones y facturas) y el comprobante PDF.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
)

// HistoryUseCase consultas de solo lectura.
type HistoryUseCase struct {
	txnRepo       repository.TransactionRepository
	invoiceRepo   repository.InvoiceRepository
	tollPointRepo repository.TollPointRepository
	generator     ReceiptGenerator
}

// NewHistoryUseCase construye el caso de uso. generator puede ser nil si no se sirven PDFs.
func NewHistoryUseCase(
	txnRepo repository.TransactionRepository,
	invoiceRepo repository.InvoiceRepository,
	tollPointRepo repository.TollPointRepository,
	generator ReceiptGenerator,
) *HistoryUseCase {
	return &HistoryUseCase{
		txnRepo:       txnRepo,
		invoiceRepo:   invoiceRepo,
		tollPointRepo: tollPointRepo,
		generator:     generator,
	}
}

// Transactions historial de cruces de la placa, más recientes primero.
func (uc *HistoryUseCase) Transactions(ctx context.Context, plate string, q dto.HistoryQuery) (*dto.TransactionHistoryResponse, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: placa requerida", domain.ErrInvalidInput)
	}
	switch q.Status {
	case "", entity.TransactionStatusPending, entity.TransactionStatusCompleted:
	default:
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, q.Status)
	}
	q.Normalize()

	list, err := uc.txnRepo.ListByPlate(ctx, plate, repository.TransactionFilter{
		Status:          q.Status,
		RequiresPayment: q.RequiresPayment,
		Limit:           q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("historial: transacciones: %w", err)
	}
	items := make([]*dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, ToTransactionResponse(t))
	}
	return &dto.TransactionHistoryResponse{Plate: plate, Count: len(items), Items: items}, nil
}

// Invoices facturas de la placa, más recientes primero.
func (uc *HistoryUseCase) Invoices(ctx context.Context, plate string, limit int) (*dto.InvoiceHistoryResponse, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: placa requerida", domain.ErrInvalidInput)
	}
	q := dto.HistoryQuery{Limit: limit}
	q.Normalize()

	list, err := uc.invoiceRepo.ListByPlate(ctx, plate, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("historial: facturas: %w", err)
	}
	items := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, ToInvoiceResponse(inv))
	}
	return &dto.InvoiceHistoryResponse{Plate: plate, Count: len(items), Items: items}, nil
}

// Invoice devuelve una factura por id.
func (uc *HistoryUseCase) Invoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.getInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

// ReceiptPDF genera el comprobante de la factura.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
func (uc *HistoryUseCase) ReceiptPDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("historial: generador de PDF no configurado")
	}
	inv, err := uc.getInvoice(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	tp, err := uc.tollPointRepo.GetByID(ctx, inv.TollPointID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener peaje: %w", err)
	}
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, inv, tp)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}
	return pdfBytes, inv.InvoiceID + ".pdf", nil
}

func (uc *HistoryUseCase) getInvoice(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, fmt.Errorf("%w: invoice_id requerido", domain.ErrInvalidInput)
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("historial: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceID)
	}
	return inv, nil
}

// ToTransactionResponse mapea la entidad al DTO; los montos salen redondeados.
func ToTransactionResponse(t *entity.Transaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		EventID:          t.EventID,
		Plate:            t.Plate,
		TollPointID:      t.TollPointID,
		PayerClass:       t.PayerClass.String(),
		CrossedAt:        t.CrossedAt,
		CreatedAt:        t.CreatedAt,
		Subtotal:         domainsettlement.RoundMoney(t.Subtotal),
		Tax:              domainsettlement.RoundMoney(t.Tax),
		Total:            domainsettlement.RoundMoney(t.Total),
		Currency:         t.Currency,
		Status:           t.Status,
		RequiresPayment:  t.RequiresPayment,
		LateFee:          t.LateFee,
		TotalWithLateFee: t.TotalWithLateFee,
		CompletedAt:      t.CompletedAt,
		PaymentMethod:    t.PaymentMethod,
		TagID:            t.TagID,
		TagBalanceBefore: t.TagBalanceBefore,
		TagBalanceAfter:  t.TagBalanceAfter,
		InvoiceID:        t.InvoiceID,
	}
}

// ToInvoiceResponse mapea la factura al DTO.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		EventID:       inv.EventID,
		Plate:         inv.Plate,
		TollPointID:   inv.TollPointID,
		Subtotal:      domainsettlement.RoundMoney(inv.Subtotal),
		Tax:           domainsettlement.RoundMoney(inv.Tax),
		LateFee:       domainsettlement.RoundMoney(inv.LateFee),
		TagPaid:       domainsettlement.RoundMoney(inv.TagPaid),
		Amount:        domainsettlement.RoundMoney(inv.Amount),
		Currency:      inv.Currency,
		Status:        inv.Status,
		PaymentMethod: inv.PaymentMethod,
		CreatedAt:     inv.CreatedAt,
	}
}
