package repository

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// TransactionFilter filtros opcionales para el historial por placa.
type TransactionFilter struct {
	Status          string
	RequiresPayment *bool
	Limit           int
}

// TransactionRepository define el puerto de persistencia de transacciones.
// Clave primaria lógica: event_id; índice secundario (placa, fecha de cruce DESC).
type TransactionRepository interface {
	// CreateIfAbsent inserta la transacción si no existe otra con el mismo EventID.
	// created=false indica que ya existía (no es error).
	CreateIfAbsent(ctx context.Context, txn *entity.Transaction) (created bool, err error)
	// GetByEventID devuelve (nil, nil) si no existe.
	GetByEventID(ctx context.Context, eventID string) (*entity.Transaction, error)
	// UpdateIfVersion escritura condicional análoga a TagRepository.UpdateIfVersion.
	UpdateIfVersion(ctx context.Context, txn *entity.Transaction, expectedVersion int64) error
	// ListByPlate devuelve las transacciones de la placa, más recientes primero.
	ListByPlate(ctx context.Context, plate string, filter TransactionFilter) ([]*entity.Transaction, error)
}
