package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
)

// DefaultPaymentMethod medio de pago si el caller no lo informa.
const DefaultPaymentMethod = "cash"

// CompletePendingUseCase resuelve deuda: cierra una transacción pendiente cobrando mora por minuto.
type CompletePendingUseCase struct {
	txRunner TxRunner
	lateFee  domainsettlement.LateFeePolicy
	policy   Policy
	rt       Runtime
}

// NewCompletePendingUseCase construye el caso de uso.
func NewCompletePendingUseCase(txRunner TxRunner, policy Policy, rt Runtime) *CompletePendingUseCase {
	return &CompletePendingUseCase{
		txRunner: txRunner,
		lateFee:  domainsettlement.LateFeePolicy{RatePerMinute: policy.LateFeePerMinute},
		policy:   policy,
		rt:       rt.withDefaults("complete_pending"),
	}
}

// CompleteInput entrada; PaymentMethod y PaidAt son opcionales.
type CompleteInput struct {
	EventID       string
	PaymentMethod string
	PaidAt        time.Time
}

// CompletionResult resultado de la resolución.
type CompletionResult struct {
	EventID          string
	Plate            string
	InvoiceID        string
	Amount           decimal.Decimal // pendiente del cruce antes de mora
	TagPaid          decimal.Decimal // parte ya descontada del saldo del tag
	LateFee          decimal.Decimal
	TotalWithLateFee decimal.Decimal
	MinutesElapsed   int64
	Currency         string
	CompletedAt      time.Time
}

// CompletePendingTransaction cobra una transacción pendiente (o completada con pago requerido):
//
//	minutos   = floor((ahora - creada) / 60s), mínimo 0
//	mora      = minutos * tarifa por minuto
//	pendiente = deuda generada en el tag si el saldo cubrió una parte, si no el total del cruce
//	total     = pendiente + mora
//
// Transacción, tag y factura se escriben en una sola transacción de almacenamiento con
// escrituras condicionales; ante conflicto se relee todo y se recalcula hasta Policy.MaxAttempts.
// La factura solo se crea si no existe.
func (uc *CompletePendingUseCase) CompletePendingTransaction(ctx context.Context, in CompleteInput) (*CompletionResult, error) {
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id requerido", domain.ErrInvalidInput)
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	for attempt := 1; attempt <= uc.policy.attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		now := in.PaidAt
		if now.IsZero() {
			now = uc.rt.Now()
		}
		res, err := uc.resolve(ctx, eventID, method, now)
		if errors.Is(err, domain.ErrVersionConflict) {
			uc.rt.Observer.UpdateConflict("complete_pending")
			uc.rt.Log.Debug().Str("event_id", eventID).Int("attempt", attempt).Msg("conflicto de versión, reintentando")
			continue
		}
		if err != nil {
			return nil, err
		}

		uc.rt.Observer.DebtResolved(res.MinutesElapsed, res.LateFee)
		uc.rt.Log.Info().
			Str("event_id", eventID).
			Str("placa", res.Plate).
			Str("invoice_id", res.InvoiceID).
			Int64("minutes_elapsed", res.MinutesElapsed).
			Str("late_fee", res.LateFee.StringFixed(2)).
			Str("total_with_late_fee", res.TotalWithLateFee.StringFixed(2)).
			Msg("transacción completada")

		uc.rt.publishBestEffort(ctx, Notification{
			Kind:      NotificationTransactionCompleted,
			Type:      PaymentSuccessful,
			EventID:   eventID,
			Plate:     res.Plate,
			Status:    entity.TransactionStatusCompleted,
			Amount:    res.TotalWithLateFee,
			Currency:  res.Currency,
			InvoiceID: res.InvoiceID,
			Message: fmt.Sprintf("Transacción completada para placa %s. Factura: %s",
				res.Plate, res.InvoiceID),
			OccurredAt: res.CompletedAt,
		})
		return res, nil
	}
	return nil, fmt.Errorf("%w: evento %s", domain.ErrConcurrentUpdateConflict, eventID)
}

func (uc *CompletePendingUseCase) resolve(ctx context.Context, eventID, method string, now time.Time) (*CompletionResult, error) {
	var res *CompletionResult
	err := uc.txRunner.RunSettlement(ctx, func(
		txnRepo repository.TransactionRepository,
		tagRepo repository.TagRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		txn, err := txnRepo.GetByEventID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("completar: obtener transacción: %w", err)
		}
		if txn == nil {
			return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, eventID)
		}
		if txn.IsSettled() {
			return fmt.Errorf("%w: evento %s factura %s", domain.ErrAlreadySettled, eventID, txn.InvoiceID)
		}

		assessed := uc.lateFee.Assess(txn.CreatedAt, now)
		due, tagPaid := domainsettlement.Outstanding(txn)
		totalDue := domainsettlement.RoundMoney(due.Add(assessed.LateFee))
		invoiceID := domainsettlement.InvoiceIDFor(txn.EventID)

		if txn.TagID != "" && txn.TagDebtIncurred.IsPositive() {
			tag, err := tagRepo.GetByID(ctx, txn.TagID)
			if err != nil {
				return fmt.Errorf("completar: obtener tag: %w", err)
			}
			if tag == nil {
				return fmt.Errorf("%w: %s", domain.ErrTagNotFound, txn.TagID)
			}
			work := tag.Clone()
			domainsettlement.SettleDebt(work, txn.TagDebtIncurred, assessed.LateFee, now)
			if err := tagRepo.UpdateIfVersion(ctx, work, tag.Version); err != nil {
				return err
			}
		}

		updated := txn.Clone()
		completedAt := now
		updated.Status = entity.TransactionStatusCompleted
		updated.RequiresPayment = false
		updated.LateFee = decimal.NewNullDecimal(assessed.LateFee)
		updated.TotalWithLateFee = decimal.NewNullDecimal(totalDue)
		updated.CompletedAt = &completedAt
		updated.PaymentMethod = method
		updated.InvoiceID = invoiceID
		if err := txnRepo.UpdateIfVersion(ctx, updated, txn.Version); err != nil {
			return err
		}

		inv := &entity.Invoice{
			InvoiceID:     invoiceID,
			EventID:       txn.EventID,
			Plate:         txn.Plate,
			TollPointID:   txn.TollPointID,
			Subtotal:      txn.Subtotal,
			Tax:           txn.Tax,
			LateFee:       assessed.LateFee,
			TagPaid:       tagPaid,
			Amount:        totalDue,
			Currency:      txn.Currency,
			Status:        entity.InvoiceStatusPaid,
			PaymentMethod: method,
			CreatedAt:     now,
			Transaction:   *updated.Clone(),
		}
		if _, err := invoiceRepo.CreateIfAbsent(ctx, inv); err != nil {
			return fmt.Errorf("completar: insertar factura: %w", err)
		}

		res = &CompletionResult{
			EventID:          txn.EventID,
			Plate:            txn.Plate,
			InvoiceID:        invoiceID,
			Amount:           domainsettlement.RoundMoney(due),
			TagPaid:          domainsettlement.RoundMoney(tagPaid),
			LateFee:          assessed.LateFee,
			TotalWithLateFee: totalDue,
			MinutesElapsed:   assessed.MinutesElapsed,
			Currency:         txn.Currency,
			CompletedAt:      completedAt,
		}
		return nil
	})
	return res, err
}
