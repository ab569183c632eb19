package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transacción de peaje.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
)

// Transaction es un cruce de peaje tasado. EventID es la clave de idempotencia:
// existe exactamente una transacción por evento.
type Transaction struct {
	EventID          string
	Plate            string
	TollPointID      string
	PayerClass       PayerClass
	CrossedAt        time.Time
	CreatedAt        time.Time
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	Total            decimal.Decimal
	Currency         string
	Status           string
	RequiresPayment  bool
	LateFee          decimal.NullDecimal
	TotalWithLateFee decimal.NullDecimal
	CompletedAt      *time.Time
	PaymentMethod    string
	TagID            string
	TagBalanceBefore decimal.NullDecimal
	TagBalanceAfter  decimal.NullDecimal
	TagDebtIncurred  decimal.Decimal // deuda generada en el tag por este cruce
	InvoiceID        string
	Version          int64
}

// IsSettled indica que ya no queda nada por cobrar.
func (t *Transaction) IsSettled() bool {
	return t.Status == TransactionStatusCompleted && !t.RequiresPayment
}

// Clone devuelve una copia independiente.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}
