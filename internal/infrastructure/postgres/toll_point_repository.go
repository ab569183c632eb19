package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
	"github.com/jhoicas/Peajes-api/internal/domain/repository"
)

var _ repository.TollPointRepository = (*TollPointRepo)(nil)

// TollPointRepo catálogo de peajes (solo lectura).
type TollPointRepo struct {
	q Querier
}

// NewTollPointRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTollPointRepository(q Querier) *TollPointRepo {
	return &TollPointRepo{q: q}
}

// GetByID obtiene un peaje por ID.
func (r *TollPointRepo) GetByID(ctx context.Context, id string) (*entity.TollPoint, error) {
	query := `
		SELECT id, name, location, base_fee, tag_fee, registered_fee, unregistered_fee
		FROM toll_points WHERE id = $1`
	var tp entity.TollPoint
	err := r.q.QueryRow(ctx, query, id).Scan(
		&tp.ID, &tp.Name, &tp.Location, &tp.BaseFee, &tp.TagFee, &tp.RegisteredFee, &tp.UnregisteredFee,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get toll point: %w", err)
	}
	return &tp, nil
}
