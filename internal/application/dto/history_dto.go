package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionResponse transacción en el historial.
type TransactionResponse struct {
	EventID          string              `json:"event_id"`
	Plate            string              `json:"placa"`
	TollPointID      string              `json:"peaje_id"`
	PayerClass       string              `json:"payer_class"`
	CrossedAt        time.Time           `json:"timestamp"`
	CreatedAt        time.Time           `json:"created_at"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Tax              decimal.Decimal     `json:"tax"`
	Total            decimal.Decimal     `json:"total"`
	Currency         string              `json:"currency"`
	Status           string              `json:"status"`
	RequiresPayment  bool                `json:"requires_payment"`
	LateFee          decimal.NullDecimal `json:"late_fee"`
	TotalWithLateFee decimal.NullDecimal `json:"total_with_late_fee"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	PaymentMethod    string              `json:"payment_method,omitempty"`
	TagID            string              `json:"tag_id,omitempty"`
	TagBalanceBefore decimal.NullDecimal `json:"tag_balance_before"`
	TagBalanceAfter  decimal.NullDecimal `json:"tag_balance_after"`
	InvoiceID        string              `json:"invoice_id,omitempty"`
}

// TransactionHistoryResponse para GET /api/history/:placa/transactions.
type TransactionHistoryResponse struct {
	Plate string                 `json:"placa"`
	Count int                    `json:"count"`
	Items []*TransactionResponse `json:"items"`
}

// InvoiceResponse factura en respuestas.
type InvoiceResponse struct {
	InvoiceID     string          `json:"invoice_id"`
	EventID       string          `json:"event_id"`
	Plate         string          `json:"placa"`
	TollPointID   string          `json:"peaje_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	LateFee       decimal.Decimal `json:"late_fee"`
	TagPaid       decimal.Decimal `json:"tag_paid"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoiceHistoryResponse para GET /api/history/:placa/invoices.
type InvoiceHistoryResponse struct {
	Plate string             `json:"placa"`
	Count int                `json:"count"`
	Items []*InvoiceResponse `json:"items"`
}
