package repository

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// TollPointRepository define el puerto de lectura del catálogo de peajes.
type TollPointRepository interface {
	// GetByID devuelve (nil, nil) si el peaje no existe.
	GetByID(ctx context.Context, id string) (*entity.TollPoint, error)
}
