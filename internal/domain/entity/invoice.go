package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatusPaid es el único estado con el que se emite una factura.
const InvoiceStatusPaid = "paid"

// Invoice representa la factura pagada de un cruce. Su ID se deriva del evento,
// de modo que recalcularla produce el mismo identificador.
//
// Subtotal + Tax + LateFee == TagPaid + Amount.
type Invoice struct {
	InvoiceID     string
	EventID       string
	Plate         string
	TollPointID   string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	LateFee       decimal.Decimal
	TagPaid       decimal.Decimal // parte del cruce ya cubierta con saldo del tag antes de emitir
	Amount        decimal.Decimal // cobrado con PaymentMethod, mora incluida
	Currency      string
	Status        string
	PaymentMethod string
	CreatedAt     time.Time
	Transaction   Transaction // snapshot al momento de emitir
}
