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

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo vehículos registrados.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// GetByPlate obtiene la cuenta de una placa.
func (r *AccountRepo) GetByPlate(ctx context.Context, plate string) (*entity.Account, error) {
	query := `
		SELECT plate, owner_name, email, phone, registration_class, tag_id, created_at
		FROM accounts WHERE plate = $1`
	var a entity.Account
	var tagID *string
	err := r.q.QueryRow(ctx, query, plate).Scan(
		&a.Plate, &a.OwnerName, &a.Email, &a.Phone, &a.RegistrationClass, &tagID, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	a.TagID = derefString(tagID)
	return &a, nil
}

// LinkTag actualiza el tag vinculado a la placa.
func (r *AccountRepo) LinkTag(ctx context.Context, plate, tagID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE accounts SET tag_id = $2 WHERE plate = $1`, plate, nullString(tagID))
	if err != nil {
		return fmt.Errorf("link tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
