package repository

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// AccountRepository define el puerto de vehículos registrados. El motor solo lee;
// la gestión de tags actualiza el vínculo placa → tag.
type AccountRepository interface {
	// GetByPlate devuelve (nil, nil) si la placa no está registrada.
	GetByPlate(ctx context.Context, plate string) (*entity.Account, error)
	// LinkTag asocia tagID a la placa; tagID vacío elimina el vínculo. domain.ErrAccountNotFound si no existe.
	LinkTag(ctx context.Context, plate, tagID string) error
}
