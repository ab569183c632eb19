package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un tag prepago.
const (
	TagStatusActive   = "active"
	TagStatusInactive = "inactive"
)

// Tag es el instrumento prepago vinculado a una placa.
//
// Invariantes tras cada escritura: Balance >= 0, Debt >= 0, HasDebt == Debt > 0.
// Version es el campo de control optimista: cada escritura condicional lo incrementa.
type Tag struct {
	TagID     string
	Plate     string
	Status    string
	Balance   decimal.Decimal
	Debt      decimal.Decimal
	LateFee   decimal.Decimal // mora acumulada
	HasDebt   bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DebitReceipt registro de un débito aplicado, único por (TagID, TransactionID).
// Una reentrega del mismo débito se responde desde aquí sin volver a mutar el tag.
type DebitReceipt struct {
	TagID           string
	TransactionID   string
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	DebtIncrease    decimal.Decimal
	AppliedAt       time.Time
}

// IsActive indica si el tag puede usarse para pagar.
func (t *Tag) IsActive() bool { return t.Status == TagStatusActive }

// SyncDebtFlag recalcula HasDebt a partir de Debt.
func (t *Tag) SyncDebtFlag() { t.HasDebt = t.Debt.IsPositive() }

// Clone devuelve una copia independiente.
func (t *Tag) Clone() *Tag {
	c := *t
	return &c
}
