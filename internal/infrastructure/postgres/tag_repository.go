package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

var _ repository.TagRepository = (*TagRepo)(nil)

const tagColumns = `tag_id, plate, status, balance, debt, late_fee, has_debt, version, created_at, updated_at`

// tagUpdate es la escritura condicional compartida por UpdateIfVersion y ApplyDebit.
const tagUpdate = `
	UPDATE tags SET
		status = $3, balance = $4, debt = $5, late_fee = $6, has_debt = $7,
		updated_at = $8, version = version + 1
	WHERE tag_id = $1 AND version = $2`

// TagRepo tags prepago con escritura condicional por versión (usable con pool o tx).
type TagRepo struct {
	q Querier
}

// NewTagRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTagRepository(q Querier) *TagRepo {
	return &TagRepo{q: q}
}

// GetByID obtiene un tag por ID.
func (r *TagRepo) GetByID(ctx context.Context, tagID string) (*entity.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE tag_id = $1`
	t, err := scanTag(r.q.QueryRow(ctx, query, tagID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// ListByPlate lista los tags de la placa, más recientes primero.
func (r *TagRepo) ListByPlate(ctx context.Context, plate string) ([]*entity.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE plate = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, plate)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Create inserta un tag nuevo con versión 1.
func (r *TagRepo) Create(ctx context.Context, tag *entity.Tag) error {
	query := `
		INSERT INTO tags (tag_id, plate, status, balance, debt, late_fee, has_debt, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		tag.TagID, tag.Plate, tag.Status, tag.Balance, tag.Debt, tag.LateFee, tag.HasDebt,
		tag.CreatedAt, tag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	tag.Version = 1
	return nil
}

// UpdateIfVersion escribe el estado del tag solo si la versión almacenada es expectedVersion.
func (r *TagRepo) UpdateIfVersion(ctx context.Context, tag *entity.Tag, expectedVersion int64) error {
	res, err := r.q.Exec(ctx, tagUpdate,
		tag.TagID, expectedVersion,
		tag.Status, tag.Balance, tag.Debt, tag.LateFee, tag.HasDebt, tag.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if res.RowsAffected() == 0 {
		return r.missedUpdate(ctx, tag.TagID)
	}
	tag.Version = expectedVersion + 1
	return nil
}

// GetDebit obtiene el débito aplicado para (tag, transacción).
func (r *TagRepo) GetDebit(ctx context.Context, tagID, transactionID string) (*entity.DebitReceipt, error) {
	query := `
		SELECT tag_id, txn_id, amount, previous_balance, new_balance, debt_increase, applied_at
		FROM tag_debits WHERE tag_id = $1 AND txn_id = $2`
	var d entity.DebitReceipt
	err := r.q.QueryRow(ctx, query, tagID, transactionID).Scan(
		&d.TagID, &d.TransactionID, &d.Amount, &d.PreviousBalance, &d.NewBalance, &d.DebtIncrease, &d.AppliedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag debit: %w", err)
	}
	return &d, nil
}

// ApplyDebit actualiza el tag y registra el débito en una sola sentencia: si la condición de
// versión no se cumple no se inserta nada; si el débito ya existe falla la sentencia completa.
func (r *TagRepo) ApplyDebit(ctx context.Context, tag *entity.Tag, expectedVersion int64, receipt *entity.DebitReceipt) error {
	query := `
		WITH upd AS (` + tagUpdate + `
			RETURNING tag_id
		)
		INSERT INTO tag_debits (tag_id, txn_id, amount, previous_balance, new_balance, debt_increase, applied_at)
		SELECT tag_id, $9::text, $10::numeric, $11::numeric, $12::numeric, $13::numeric, $14::timestamptz FROM upd`
	res, err := r.q.Exec(ctx, query,
		tag.TagID, expectedVersion,
		tag.Status, tag.Balance, tag.Debt, tag.LateFee, tag.HasDebt, tag.UpdatedAt,
		receipt.TransactionID, receipt.Amount, receipt.PreviousBalance, receipt.NewBalance,
		receipt.DebtIncrease, receipt.AppliedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("apply tag debit: %w", err)
	}
	if res.RowsAffected() == 0 {
		return r.missedUpdate(ctx, tag.TagID)
	}
	tag.Version = expectedVersion + 1
	receipt.TagID = tag.TagID
	return nil
}

// missedUpdate distingue tag inexistente de versión desactualizada.
func (r *TagRepo) missedUpdate(ctx context.Context, tagID string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tags WHERE tag_id = $1)`, tagID).Scan(&exists); err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if !exists {
		return domain.ErrTagNotFound
	}
	return domain.ErrVersionConflict
}

func scanTag(row pgx.Row) (*entity.Tag, error) {
	var t entity.Tag
	err := row.Scan(
		&t.TagID, &t.Plate, &t.Status, &t.Balance, &t.Debt, &t.LateFee, &t.HasDebt, &t.Version,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
