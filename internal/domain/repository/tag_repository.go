package repository

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// TagRepository define el puerto de persistencia de tags prepago.
// Toda modificación de saldo/deuda pasa por UpdateIfVersion (compare-and-swap).
type TagRepository interface {
	// GetByID devuelve (nil, nil) si el tag no existe.
	GetByID(ctx context.Context, tagID string) (*entity.Tag, error)
	// ListByPlate devuelve todos los tags (activos o no) de una placa.
	ListByPlate(ctx context.Context, plate string) ([]*entity.Tag, error)
	// Create inserta un tag nuevo; domain.ErrDuplicate si el tag_id ya existe.
	Create(ctx context.Context, tag *entity.Tag) error
	// UpdateIfVersion escribe tag solo si la versión almacenada es expectedVersion.
	// Si no coincide devuelve domain.ErrVersionConflict. En éxito tag.Version queda en expectedVersion+1.
	UpdateIfVersion(ctx context.Context, tag *entity.Tag, expectedVersion int64) error
	// GetDebit devuelve el débito aplicado con ese transaction_id, o (nil, nil) si no existe.
	GetDebit(ctx context.Context, tagID, transactionID string) (*entity.DebitReceipt, error)
	// ApplyDebit escribe tag con la misma condición que UpdateIfVersion y registra receipt de forma atómica.
	// Si la versión cambió o el débito ya estaba registrado devuelve domain.ErrVersionConflict.
	ApplyDebit(ctx context.Context, tag *entity.Tag, expectedVersion int64, receipt *entity.DebitReceipt) error
}
