// Package settlement implementa las cinco operaciones del motor de liquidación de peajes:
// ClassifyPayer, CalculateCharge, DebitTag, RecordSettlement y CompletePendingTransaction.
//
// Cada operación es una llamada request/response sin estado en proceso; el orquestador externo
// las invoca en orden y reenvía la salida de una como entrada de la siguiente (entrega al menos una vez).
package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
	domainsettlement "github.com/jhoicas/Peajes-api/internal/domain/settlement"
	"github.com/jhoicas/Peajes-api/pkg/logger"
)

// TxRunner ejecuta fn dentro de una transacción de almacenamiento con repositorios atados a ella.
// Si fn devuelve error no queda ninguna escritura aplicada.
type TxRunner interface {
	RunSettlement(ctx context.Context, fn func(
		txnRepo repository.TransactionRepository,
		tagRepo repository.TagRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// Tipos de notificación publicados.
const (
	NotificationSettlementRecorded   = "settlement.recorded"
	NotificationTransactionCompleted = "transaction.completed"
)

// Lo que la notificación le pide al conductor.
const (
	PaymentRequired   = "payment_required"
	PaymentSuccessful = "payment_successful"
)

// Notification mensaje publicado tras un commit.
type Notification struct {
	Kind        string          `json:"kind"`
	Type        string          `json:"notification_type"`
	EventID     string          `json:"event_id"`
	Plate       string          `json:"placa"`
	TollPointID string          `json:"peaje_id,omitempty"`
	PayerClass  string          `json:"payer_class,omitempty"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
	Message     string          `json:"message"`
	TagInfo     *TagInfo        `json:"tag_info,omitempty"`
	PaymentInfo *PaymentInfo    `json:"payment_info,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// TagInfo estado del tag tras el débito del cruce.
type TagInfo struct {
	TagID           string          `json:"tag_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	Debt            decimal.Decimal `json:"debt"`
	HasDebt         bool            `json:"has_debt"`
}

// PaymentInfo cómo saldar un cruce que requiere pago.
type PaymentInfo struct {
	AmountDue        decimal.Decimal `json:"amount_due"`
	LateFeePerMinute decimal.Decimal `json:"late_fee_per_minute"`
	HowToPay         string          `json:"how_to_pay"`
}

// Publisher capacidad de publicación "dispara y olvida". Un error nunca afecta la liquidación.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Observer recibe los hechos del motor para métricas.
type Observer interface {
	SettlementRecorded(class entity.PayerClass, status string, duplicate bool)
	TagDebited(debtCreated, replayed bool)
	UpdateConflict(operation string)
	DebtResolved(minutesElapsed int64, lateFee decimal.Decimal)
	NotificationFailed(kind string)
}

type nopObserver struct{}

func (nopObserver) SettlementRecorded(entity.PayerClass, string, bool) {}
func (nopObserver) TagDebited(bool, bool)                              {}
func (nopObserver) UpdateConflict(string)                              {}
func (nopObserver) DebtResolved(int64, decimal.Decimal)                {}
func (nopObserver) NotificationFailed(string)                          {}

// Policy parámetros de negocio del motor.
type Policy struct {
	TaxRate          decimal.Decimal
	Currency         string
	LateFeePerMinute decimal.Decimal
	MaxAttempts      int
}

// DefaultPolicy IVA 12 %, GTQ, mora 1.00/minuto, 5 intentos optimistas.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate:          domainsettlement.DefaultTaxRate,
		Currency:         domainsettlement.DefaultCurrency,
		LateFeePerMinute: domainsettlement.DefaultLateFeePerMinute,
		MaxAttempts:      5,
	}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Runtime colaboradores transversales de los casos de uso. Los campos nil toman valores neutros.
type Runtime struct {
	Log       *logger.Logger
	Observer  Observer
	Publisher Publisher
	Now       func() time.Time
}

func (r Runtime) withDefaults(component string) Runtime {
	if r.Log == nil {
		r.Log = logger.Nop()
	}
	r.Log = r.Log.Named(component)
	if r.Observer == nil {
		r.Observer = nopObserver{}
	}
	if r.Now == nil {
		r.Now = func() time.Time { return time.Now().UTC() }
	}
	return r
}
