package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
)

// RecordSettlementUseCase persiste el cruce tasado y, si corresponde, su factura.
type RecordSettlementUseCase struct {
	txRunner TxRunner
	policy   Policy
	rt       Runtime
}

// NewRecordSettlementUseCase construye el caso de uso. De policy solo se usa la mora para avisar al conductor.
func NewRecordSettlementUseCase(txRunner TxRunner, policy Policy, rt Runtime) *RecordSettlementUseCase {
	return &RecordSettlementUseCase{txRunner: txRunner, policy: policy, rt: rt.withDefaults("record_settlement")}
}

// SettlementEvent cruce ya clasificado y tasado. Debit es obligatorio para PayerPrepaidTag.
type SettlementEvent struct {
	EventID     string
	Plate       string
	TollPointID string
	PayerClass  entity.PayerClass
	CrossedAt   time.Time
	Charge      domainsettlement.Charge
	TagID       string
	Debit       *DebitResult
}

// SettlementRecord resultado de la persistencia.
type SettlementRecord struct {
	TransactionID   string
	InvoiceID       string // vacío si la factura queda diferida
	Status          string
	RequiresPayment bool
	Duplicate       bool // el evento ya estaba registrado; no se escribió nada
}

func (e SettlementEvent) validate() error {
	var missing []string
	if strings.TrimSpace(e.EventID) == "" {
		missing = append(missing, "event_id")
	}
	if strings.TrimSpace(e.Plate) == "" {
		missing = append(missing, "placa")
	}
	if strings.TrimSpace(e.TollPointID) == "" {
		missing = append(missing, "peaje_id")
	}
	if !e.Charge.Total.IsPositive() {
		missing = append(missing, "charge.total")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: campos requeridos %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !e.PayerClass.Valid() {
		return fmt.Errorf("%w: tipo de pagador %q", domain.ErrInvalidInput, e.PayerClass)
	}
	if e.PayerClass == entity.PayerPrepaidTag && (e.TagID == "" || e.Debit == nil) {
		return fmt.Errorf("%w: pagador con tag requiere tag_id y resultado del débito", domain.ErrInvalidInput)
	}
	return nil
}

// RecordSettlement decide el estado del cruce y lo persiste:
//   - no registrado → pending, requires_payment, sin factura
//   - tag con deuda generada → completed, requires_payment, factura diferida a la resolución
//   - resto → completed, factura inmediata por el total
//
// Reenviar un event_id ya registrado es un éxito sin escrituras que devuelve lo almacenado.
func (uc *RecordSettlementUseCase) RecordSettlement(ctx context.Context, ev SettlementEvent) (*SettlementRecord, error) {
	if err := ev.validate(); err != nil {
		return nil, err
	}
	now := uc.rt.Now()
	crossedAt := ev.CrossedAt
	if crossedAt.IsZero() {
		crossedAt = now
	}

	txn := &entity.Transaction{
		EventID:     ev.EventID,
		Plate:       ev.Plate,
		TollPointID: ev.TollPointID,
		PayerClass:  ev.PayerClass,
		CrossedAt:   crossedAt,
		CreatedAt:   now,
		Subtotal:    ev.Charge.Subtotal,
		Tax:         ev.Charge.Tax,
		Total:       ev.Charge.Total,
		Currency:    ev.Charge.Currency,
		TagID:       ev.TagID,
	}
	if txn.Currency == "" {
		txn.Currency = domainsettlement.DefaultCurrency
	}
	if ev.Debit != nil {
		txn.TagBalanceBefore = decimal.NewNullDecimal(ev.Debit.PreviousBalance)
		txn.TagBalanceAfter = decimal.NewNullDecimal(ev.Debit.NewBalance)
		txn.TagDebtIncurred = ev.Debit.DebtIncrease
	}

	issueInvoice := false
	switch {
	case ev.PayerClass == entity.PayerUnregistered:
		txn.Status = entity.TransactionStatusPending
		txn.RequiresPayment = true
	case txn.TagDebtIncurred.IsPositive():
		txn.Status = entity.TransactionStatusCompleted
		txn.RequiresPayment = true
	default:
		txn.Status = entity.TransactionStatusCompleted
		issueInvoice = true
		txn.InvoiceID = domainsettlement.InvoiceIDFor(ev.EventID)
	}

	var out *SettlementRecord
	err := uc.txRunner.RunSettlement(ctx, func(
		txnRepo repository.TransactionRepository,
		_ repository.TagRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		created, err := txnRepo.CreateIfAbsent(ctx, txn)
		if err != nil {
			return fmt.Errorf("registrar: insertar transacción: %w", err)
		}
		if !created {
			existing, err := txnRepo.GetByEventID(ctx, ev.EventID)
			if err != nil {
				return fmt.Errorf("registrar: leer transacción existente: %w", err)
			}
			if existing == nil {
				return fmt.Errorf("registrar: transacción %s desapareció tras conflicto", ev.EventID)
			}
			out = &SettlementRecord{
				TransactionID:   existing.EventID,
				InvoiceID:       existing.InvoiceID,
				Status:          existing.Status,
				RequiresPayment: existing.RequiresPayment,
				Duplicate:       true,
			}
			return nil
		}
		if issueInvoice {
			inv := &entity.Invoice{
				InvoiceID:     txn.InvoiceID,
				EventID:       txn.EventID,
				Plate:         txn.Plate,
				TollPointID:   txn.TollPointID,
				Subtotal:      txn.Subtotal,
				Tax:           txn.Tax,
				LateFee:       decimal.Zero,
				Amount:        txn.Total,
				Currency:      txn.Currency,
				Status:        entity.InvoiceStatusPaid,
				PaymentMethod: paymentMethodFor(ev.PayerClass),
				CreatedAt:     now,
				Transaction:   *txn.Clone(),
			}
			if _, err := invoiceRepo.CreateIfAbsent(ctx, inv); err != nil {
				return fmt.Errorf("registrar: insertar factura: %w", err)
			}
		}
		out = &SettlementRecord{
			TransactionID:   txn.EventID,
			InvoiceID:       txn.InvoiceID,
			Status:          txn.Status,
			RequiresPayment: txn.RequiresPayment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.rt.Observer.SettlementRecorded(ev.PayerClass, out.Status, out.Duplicate)
	uc.rt.Log.Info().
		Str("event_id", ev.EventID).
		Str("placa", ev.Plate).
		Str("payer_class", ev.PayerClass.String()).
		Str("status", out.Status).
		Bool("requires_payment", out.RequiresPayment).
		Str("invoice_id", out.InvoiceID).
		Str("amount", txn.Total.StringFixed(2)).
		Bool("duplicate", out.Duplicate).
		Msg("transacción registrada")

	if !out.Duplicate {
		uc.rt.publishBestEffort(ctx, uc.notification(ev, txn, out, now))
	}
	return out, nil
}

// notification arma el aviso al conductor: cobro exitoso o pago requerido, con el estado del tag si lo hubo.
func (uc *RecordSettlementUseCase) notification(ev SettlementEvent, txn *entity.Transaction, out *SettlementRecord, now time.Time) Notification {
	total := txn.Total.StringFixed(2)
	n := Notification{
		Kind:        NotificationSettlementRecorded,
		Type:        PaymentSuccessful,
		EventID:     ev.EventID,
		Plate:       ev.Plate,
		TollPointID: ev.TollPointID,
		PayerClass:  ev.PayerClass.String(),
		Status:      out.Status,
		Amount:      txn.Total,
		Currency:    txn.Currency,
		InvoiceID:   out.InvoiceID,
		Message:     fmt.Sprintf("Cruce registrado para placa %s por %s %s", ev.Plate, total, txn.Currency),
		OccurredAt:  now,
	}
	if d := ev.Debit; d != nil {
		n.TagInfo = &TagInfo{
			TagID:           ev.TagID,
			PreviousBalance: d.PreviousBalance,
			CurrentBalance:  d.NewBalance,
			Debt:            d.Debt,
			HasDebt:         d.HasDebt,
		}
		n.Message = fmt.Sprintf("Se descontó %s %s del tag %s. Saldo anterior: %s, saldo actual: %s",
			total, txn.Currency, ev.TagID, d.PreviousBalance.StringFixed(2), d.NewBalance.StringFixed(2))
	}
	if !out.RequiresPayment {
		return n
	}

	due, _ := domainsettlement.Outstanding(txn)
	n.Type = PaymentRequired
	n.PaymentInfo = &PaymentInfo{
		AmountDue:        domainsettlement.RoundMoney(due),
		LateFeePerMinute: uc.policy.LateFeePerMinute,
		HowToPay:         fmt.Sprintf("POST /api/transactions/%s/complete", ev.EventID),
	}
	n.Message = fmt.Sprintf("Cruce pendiente de pago para placa %s por %s %s", ev.Plate, due.StringFixed(2), txn.Currency)
	if n.TagInfo != nil {
		n.Message = fmt.Sprintf("El tag %s no tiene fondos suficientes. Deuda actual: %s %s. Recargue o pague para evitar mora de %s por minuto",
			ev.TagID, n.TagInfo.Debt.StringFixed(2), txn.Currency, uc.policy.LateFeePerMinute.StringFixed(2))
	}
	return n
}

func paymentMethodFor(class entity.PayerClass) string {
	if class == entity.PayerPrepaidTag {
		return "tag"
	}
	return "account"
}
