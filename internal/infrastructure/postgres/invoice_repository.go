package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `invoice_id, event_id, plate, toll_point_id, subtotal, tax, late_fee, tag_paid, amount,
		currency, status, payment_method, created_at, snapshot`

// InvoiceRepo facturas con el snapshot de la transacción en JSONB (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// CreateIfAbsent inserta la factura; si ya existe (invoice_id o event_id) no escribe y devuelve false.
func (r *InvoiceRepo) CreateIfAbsent(ctx context.Context, inv *entity.Invoice) (bool, error) {
	snapshot, err := json.Marshal(snapshotFrom(inv.Transaction))
	if err != nil {
		return false, fmt.Errorf("marshal invoice snapshot: %w", err)
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT DO NOTHING`
	res, err := r.q.Exec(ctx, query,
		inv.InvoiceID, inv.EventID, inv.Plate, inv.TollPointID,
		inv.Subtotal, inv.Tax, inv.LateFee, inv.TagPaid, inv.Amount,
		inv.Currency, inv.Status, inv.PaymentMethod, inv.CreatedAt, snapshot,
	)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}
	return res.RowsAffected() > 0, nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListByPlate lista facturas de la placa, más recientes primero.
func (r *InvoiceRepo) ListByPlate(ctx context.Context, plate string, limit int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE plate = $1 ORDER BY created_at DESC`
	args := []any{plate}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv      entity.Invoice
		snapshot []byte
	)
	err := row.Scan(
		&inv.InvoiceID, &inv.EventID, &inv.Plate, &inv.TollPointID,
		&inv.Subtotal, &inv.Tax, &inv.LateFee, &inv.TagPaid, &inv.Amount,
		&inv.Currency, &inv.Status, &inv.PaymentMethod, &inv.CreatedAt, &snapshot,
	)
	if err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		var s transactionSnapshot
		if err := json.Unmarshal(snapshot, &s); err != nil {
			return nil, fmt.Errorf("unmarshal invoice snapshot: %w", err)
		}
		inv.Transaction = s.toEntity()
	}
	return &inv, nil
}

// transactionSnapshot forma persistida de la transacción embebida en la factura.
type transactionSnapshot struct {
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
	TagDebtIncurred  decimal.Decimal     `json:"tag_debt_incurred"`
	InvoiceID        string              `json:"invoice_id,omitempty"`
}

func snapshotFrom(t entity.Transaction) transactionSnapshot {
	return transactionSnapshot{
		EventID:          t.EventID,
		Plate:            t.Plate,
		TollPointID:      t.TollPointID,
		PayerClass:       string(t.PayerClass),
		CrossedAt:        t.CrossedAt,
		CreatedAt:        t.CreatedAt,
		Subtotal:         t.Subtotal,
		Tax:              t.Tax,
		Total:            t.Total,
		Currency:         t.Currency,
		Status:           t.Status,
		RequiresPayment:  t.RequiresPayment,
		LateFee:          t.LateFee,
		TotalWithLateFee: t.TotalWithLateFee,
		CompletedAt:      t.CompletedAt,
		PaymentMethod:    t.PaymentMethod,
		TagID:            t.TagID,
		TagBalanceBefore: t.TagBalanceBefore,
		TagBalanceAfter:  t.TagBalanceAfter,
		TagDebtIncurred:  t.TagDebtIncurred,
		InvoiceID:        t.InvoiceID,
	}
}

func (s transactionSnapshot) toEntity() entity.Transaction {
	return entity.Transaction{
		EventID:          s.EventID,
		Plate:            s.Plate,
		TollPointID:      s.TollPointID,
		PayerClass:       entity.PayerClass(s.PayerClass),
		CrossedAt:        s.CrossedAt,
		CreatedAt:        s.CreatedAt,
		Subtotal:         s.Subtotal,
		Tax:              s.Tax,
		Total:            s.Total,
		Currency:         s.Currency,
		Status:           s.Status,
		RequiresPayment:  s.RequiresPayment,
		LateFee:          s.LateFee,
		TotalWithLateFee: s.TotalWithLateFee,
		CompletedAt:      s.CompletedAt,
		PaymentMethod:    s.PaymentMethod,
		TagID:            s.TagID,
		TagBalanceBefore: s.TagBalanceBefore,
		TagBalanceAfter:  s.TagBalanceAfter,
		TagDebtIncurred:  s.TagDebtIncurred,
		InvoiceID:        s.InvoiceID,
	}
}
