package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// Debit aplica un cobro sobre el tag (muta tag, que debe ser una copia de trabajo).
//
//	nuevo = saldo - monto
//	nuevo >= 0 → saldo = nuevo; deuda sin cambio
//	nuevo <  0 → deuda += -nuevo; saldo = 0
//
// La mora no se calcula aquí: se acumula al resolver la deuda según el tiempo transcurrido.
func Debit(tag *entity.Tag, amount decimal.Decimal, txnID string, at time.Time) (*entity.DebitReceipt, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	previous := tag.Balance
	newBalance := previous.Sub(amount)
	debtIncrease := decimal.Zero
	if newBalance.IsNegative() {
		debtIncrease = newBalance.Neg()
		tag.Debt = tag.Debt.Add(debtIncrease)
		newBalance = decimal.Zero
	}
	tag.Balance = newBalance
	tag.SyncDebtFlag()
	tag.UpdatedAt = at

	receipt := &entity.DebitReceipt{
		TagID:           tag.TagID,
		TransactionID:   txnID,
		Amount:          amount,
		PreviousBalance: previous,
		NewBalance:      newBalance,
		DebtIncrease:    debtIncrease,
		AppliedAt:       at,
	}
	return receipt, nil
}

// SettleDebt descuenta del tag la deuda atribuida a una transacción pagada (piso 0)
// y suma la mora cobrada al acumulado.
func SettleDebt(tag *entity.Tag, attributed, lateFee decimal.Decimal, at time.Time) {
	debt := tag.Debt.Sub(attributed)
	if debt.IsNegative() {
		debt = decimal.Zero
	}
	tag.Debt = debt
	if lateFee.IsPositive() {
		tag.LateFee = tag.LateFee.Add(lateFee)
	}
	tag.SyncDebtFlag()
	tag.UpdatedAt = at
}

// Outstanding separa el total de un cruce en lo que aún se debe y lo ya cubierto con saldo del tag.
// Si el débito del tag generó deuda solo esa deuda queda por cobrar; en otro caso se debe el total.
func Outstanding(txn *entity.Transaction) (due, tagPaid decimal.Decimal) {
	if txn.TagID == "" || !txn.TagDebtIncurred.IsPositive() || txn.TagDebtIncurred.GreaterThanOrEqual(txn.Total) {
		return txn.Total, decimal.Zero
	}
	return txn.TagDebtIncurred, txn.Total.Sub(txn.TagDebtIncurred)
}

// TopUp acredita saldo al tag (recarga).
func TopUp(tag *entity.Tag, amount decimal.Decimal, at time.Time) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	tag.Balance = tag.Balance.Add(amount)
	tag.UpdatedAt = at
	return nil
}
