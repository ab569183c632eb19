package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `event_id, plate, toll_point_id, payer_class, crossed_at, created_at,
		subtotal, tax, total, currency, status, requires_payment, late_fee, total_with_late_fee,
		completed_at, payment_method, tag_id, tag_balance_before, tag_balance_after, tag_debt_incurred,
		invoice_id, version`

// TransactionRepo transacciones de peaje (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// CreateIfAbsent inserta la transacción; si el event_id ya existe no escribe nada y devuelve false.
func (r *TransactionRepo) CreateIfAbsent(ctx context.Context, txn *entity.Transaction) (bool, error) {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, 1)
		ON CONFLICT (event_id) DO NOTHING`
	res, err := r.q.Exec(ctx, query,
		txn.EventID, txn.Plate, txn.TollPointID, string(txn.PayerClass), txn.CrossedAt, txn.CreatedAt,
		txn.Subtotal, txn.Tax, txn.Total, txn.Currency, txn.Status, txn.RequiresPayment,
		txn.LateFee, txn.TotalWithLateFee, txn.CompletedAt, txn.PaymentMethod, nullString(txn.TagID),
		txn.TagBalanceBefore, txn.TagBalanceAfter, txn.TagDebtIncurred, nullString(txn.InvoiceID),
	)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	if res.RowsAffected() == 0 {
		return false, nil
	}
	txn.Version = 1
	return true, nil
}

// GetByEventID obtiene una transacción por su event_id.
func (r *TransactionRepo) GetByEventID(ctx context.Context, eventID string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE event_id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdateIfVersion escribe los campos mutables de la resolución solo si la versión coincide.
func (r *TransactionRepo) UpdateIfVersion(ctx context.Context, txn *entity.Transaction, expectedVersion int64) error {
	query := `
		UPDATE transactions SET
			status = $3, requires_payment = $4, late_fee = $5, total_with_late_fee = $6,
			completed_at = $7, payment_method = $8, invoice_id = $9, version = version + 1
		WHERE event_id = $1 AND version = $2`
	res, err := r.q.Exec(ctx, query,
		txn.EventID, expectedVersion,
		txn.Status, txn.RequiresPayment, txn.LateFee, txn.TotalWithLateFee,
		txn.CompletedAt, txn.PaymentMethod, nullString(txn.InvoiceID),
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE event_id = $1)`, txn.EventID).Scan(&exists); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if !exists {
			return domain.ErrTransactionNotFound
		}
		return domain.ErrVersionConflict
	}
	txn.Version = expectedVersion + 1
	return nil
}

// ListByPlate lista transacciones de la placa, más recientes primero (índice plate, crossed_at DESC).
func (r *TransactionRepo) ListByPlate(ctx context.Context, plate string, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	var (
		where = []string{"plate = $1"}
		args  = []any{plate}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RequiresPayment != nil {
		args = append(args, *filter.RequiresPayment)
		where = append(where, fmt.Sprintf("requires_payment = $%d", len(args)))
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY crossed_at DESC, event_id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var (
		t              entity.Transaction
		payerClass     string
		tagID, invoice *string
	)
	err := row.Scan(
		&t.EventID, &t.Plate, &t.TollPointID, &payerClass, &t.CrossedAt, &t.CreatedAt,
		&t.Subtotal, &t.Tax, &t.Total, &t.Currency, &t.Status, &t.RequiresPayment,
		&t.LateFee, &t.TotalWithLateFee, &t.CompletedAt, &t.PaymentMethod, &tagID,
		&t.TagBalanceBefore, &t.TagBalanceAfter, &t.TagDebtIncurred, &invoice, &t.Version,
	)
	if err != nil {
		return nil, err
	}
	t.PayerClass = entity.PayerClass(payerClass)
	t.TagID = derefString(tagID)
	t.InvoiceID = derefString(invoice)
	return &t, nil
}
