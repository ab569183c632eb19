package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueTagRequest body para POST /api/users/:placa/tag.
type IssueTagRequest struct {
	TagID   string          `json:"tag_id"`
	Balance decimal.Decimal `json:"balance"`
}

// TopUpRequest body para POST /api/users/:placa/tag/topup.
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TagResponse tag prepago en respuestas.
type TagResponse struct {
	TagID     string          `json:"tag_id"`
	Plate     string          `json:"placa"`
	Status    string          `json:"status"`
	Balance   decimal.Decimal `json:"balance"`
	Debt      decimal.Decimal `json:"debt"`
	LateFee   decimal.Decimal `json:"late_fee"`
	HasDebt   bool            `json:"has_debt"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"last_updated"`
}
