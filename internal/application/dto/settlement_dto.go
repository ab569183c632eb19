package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassifyRequest body para POST /api/settlement/classify.
type ClassifyRequest struct {
	EventID     string `json:"event_id"`
	Plate       string `json:"placa"`
	TagID       string `json:"tag_id,omitempty"`
	TollPointID string `json:"peaje_id,omitempty"`
}

// ClassifyResponse tipo de pagador y registros encontrados.
type ClassifyResponse struct {
	EventID    string             `json:"event_id,omitempty"`
	Plate      string             `json:"placa"`
	PayerClass string             `json:"payer_class"`
	Account    *AccountResponse   `json:"account,omitempty"`
	Tag        *TagResponse       `json:"tag,omitempty"`
	TollPoint  *TollPointResponse `json:"peaje,omitempty"`
}

// AccountResponse vehículo registrado.
type AccountResponse struct {
	Plate             string `json:"placa"`
	OwnerName         string `json:"nombre,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"telefono,omitempty"`
	RegistrationClass string `json:"tipo_usuario"`
	TagID             string `json:"tag_id,omitempty"`
}

// TollPointResponse entrada del catálogo de peajes.
type TollPointResponse struct {
	ID              string              `json:"peaje_id"`
	Name            string              `json:"nombre"`
	Location        string              `json:"ubicacion,omitempty"`
	BaseFee         decimal.Decimal     `json:"tarifa_base"`
	TagFee          decimal.NullDecimal `json:"tarifa_tag"`
	RegisteredFee   decimal.NullDecimal `json:"tarifa_registrado"`
	UnregisteredFee decimal.NullDecimal `json:"tarifa_no_registrado"`
}

// ChargeRequest body para POST /api/settlement/charge.
type ChargeRequest struct {
	EventID     string `json:"event_id,omitempty"`
	PayerClass  string `json:"payer_class"`
	TollPointID string `json:"peaje_id"`
}

// ChargeResponse desglose del cargo. Los montos van redondeados a 2 decimales.
type ChargeResponse struct {
	EventID     string          `json:"event_id,omitempty"`
	PayerClass  string          `json:"payer_class"`
	TollPointID string          `json:"peaje_id"`
	AppliedFee  decimal.Decimal `json:"applied_fee"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

// DebitRequest body para POST /api/settlement/debit.
type DebitRequest struct {
	TagID         string          `json:"tag_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Timestamp     *time.Time      `json:"timestamp,omitempty"`
}

// DebitResponse estado del tag tras el débito.
type DebitResponse struct {
	TagID           string          `json:"tag_id"`
	TransactionID   string          `json:"transaction_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Debt            decimal.Decimal `json:"debt"`
	DebtIncrease    decimal.Decimal `json:"debt_increase"`
	LateFee         decimal.Decimal `json:"late_fee"`
	HasDebt         bool            `json:"has_debt"`
	Replayed        bool            `json:"replayed,omitempty"`
}

// RecordRequest body para POST /api/settlement/record: evento clasificado, tasado y (si aplica) debitado.
type RecordRequest struct {
	EventID     string         `json:"event_id"`
	Plate       string         `json:"placa"`
	TollPointID string         `json:"peaje_id"`
	PayerClass  string         `json:"payer_class"`
	Timestamp   *time.Time     `json:"timestamp,omitempty"`
	Charge      ChargeResponse `json:"charge"`
	TagID       string         `json:"tag_id,omitempty"`
	Debit       *DebitResponse `json:"debit,omitempty"`
}

// RecordResponse resultado de la persistencia.
type RecordResponse struct {
	TransactionID   string `json:"transaction_id"`
	InvoiceID       string `json:"invoice_id,omitempty"`
	Status          string `json:"status"`
	RequiresPayment bool   `json:"requires_payment"`
	Duplicate       bool   `json:"duplicate"`
}

// CompleteRequest body opcional para POST /api/transactions/:event_id/complete.
type CompleteRequest struct {
	PaymentMethod string     `json:"payment_method,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// CompleteResponse resultado de la resolución de deuda.
type CompleteResponse struct {
	EventID          string          `json:"event_id"`
	Plate            string          `json:"placa"`
	InvoiceID        string          `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	TagPaid          decimal.Decimal `json:"tag_paid"`
	LateFee          decimal.Decimal `json:"late_fee"`
	TotalWithLateFee decimal.Decimal `json:"total_with_late_fee"`
	MinutesElapsed   int64           `json:"minutes_elapsed"`
	Currency         string          `json:"currency"`
	CompletedAt      time.Time       `json:"completed_at"`
}
