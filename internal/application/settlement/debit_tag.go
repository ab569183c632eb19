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

// DebitTagUseCase es el ledger de saldo prepago: único punto que muta dinero antes del pago.
type DebitTagUseCase struct {
	tagRepo repository.TagRepository
	policy  Policy
	rt      Runtime
}

// NewDebitTagUseCase construye el caso de uso.
func NewDebitTagUseCase(tagRepo repository.TagRepository, policy Policy, rt Runtime) *DebitTagUseCase {
	return &DebitTagUseCase{tagRepo: tagRepo, policy: policy, rt: rt.withDefaults("debit_tag")}
}

// DebitInput entrada del débito.
type DebitInput struct {
	TagID         string
	Amount        decimal.Decimal
	TransactionID string
	Timestamp     time.Time
}

// DebitResult estado del tag tras el débito.
type DebitResult struct {
	TagID           string
	TransactionID   string
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Debt            decimal.Decimal
	DebtIncrease    decimal.Decimal // deuda creada por este débito
	LateFee         decimal.Decimal
	HasDebt         bool
	Replayed        bool // el débito ya se había aplicado; no hubo mutación
}

// DebitTag descuenta el monto del saldo del tag y genera deuda si no alcanza.
//
// La escritura es un compare-and-swap sobre la versión del tag: ante conflicto se relee el estado
// y se recalcula, hasta Policy.MaxAttempts; luego ErrConcurrentUpdateConflict.
// Cada débito queda registrado por (tag, TransactionID) junto con la escritura del tag; reinvocar con
// un TransactionID ya aplicado devuelve el resultado registrado sin mutar, aunque después hubo otros débitos.
func (uc *DebitTagUseCase) DebitTag(ctx context.Context, in DebitInput) (*DebitResult, error) {
	tagID := strings.TrimSpace(in.TagID)
	if tagID == "" || strings.TrimSpace(in.TransactionID) == "" {
		return nil, fmt.Errorf("%w: tag_id y transaction_id son requeridos", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	at := in.Timestamp
	if at.IsZero() {
		at = uc.rt.Now()
	}

	for attempt := 1; attempt <= uc.policy.attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current, err := uc.tagRepo.GetByID(ctx, tagID)
		if err != nil {
			return nil, fmt.Errorf("debitar: obtener tag: %w", err)
		}
		if current == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrTagNotFound, tagID)
		}

		// El tag se lee antes que el registro: un débito confirmado entre ambas lecturas
		// aparece aquí o hace fallar la escritura condicional.
		prior, err := uc.tagRepo.GetDebit(ctx, tagID, in.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("debitar: obtener débito previo: %w", err)
		}
		if prior != nil {
			if !prior.Amount.Equal(in.Amount) {
				uc.rt.Log.Warn().
					Str("tag_id", tagID).
					Str("transaction_id", in.TransactionID).
					Str("amount", in.Amount.String()).
					Str("applied_amount", prior.Amount.String()).
					Msg("reentrega de débito con monto distinto; se conserva el aplicado")
			}
			uc.rt.Observer.TagDebited(prior.DebtIncrease.IsPositive(), true)
			return resultFrom(current, prior, true), nil
		}

		work := current.Clone()
		receipt, err := domainsettlement.Debit(work, in.Amount, in.TransactionID, at)
		if err != nil {
			return nil, err
		}
		err = uc.tagRepo.ApplyDebit(ctx, work, current.Version, receipt)
		if errors.Is(err, domain.ErrVersionConflict) {
			uc.rt.Observer.UpdateConflict("debit_tag")
			uc.rt.Log.Debug().
				Str("tag_id", tagID).
				Int("attempt", attempt).
				Msg("conflicto de versión, reintentando")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("debitar: actualizar tag: %w", err)
		}

		uc.rt.Observer.TagDebited(receipt.DebtIncrease.IsPositive(), false)
		uc.rt.Log.Info().
			Str("tag_id", tagID).
			Str("transaction_id", in.TransactionID).
			Str("amount", in.Amount.StringFixed(2)).
			Str("previous_balance", receipt.PreviousBalance.StringFixed(2)).
			Str("new_balance", work.Balance.StringFixed(2)).
			Str("debt", work.Debt.StringFixed(2)).
			Bool("has_debt", work.HasDebt).
			Msg("tag debitado")
		return resultFrom(work, receipt, false), nil
	}
	return nil, fmt.Errorf("%w: tag %s", domain.ErrConcurrentUpdateConflict, tagID)
}

func resultFrom(tag *entity.Tag, r *entity.DebitReceipt, replayed bool) *DebitResult {
	return &DebitResult{
		TagID:           tag.TagID,
		TransactionID:   r.TransactionID,
		PreviousBalance: domainsettlement.RoundMoney(r.PreviousBalance),
		NewBalance:      domainsettlement.RoundMoney(r.NewBalance),
		Debt:            domainsettlement.RoundMoney(tag.Debt),
		DebtIncrease:    domainsettlement.RoundMoney(r.DebtIncrease),
		LateFee:         domainsettlement.RoundMoney(tag.LateFee),
		HasDebt:         tag.HasDebt,
		Replayed:        replayed,
	}
}
