package repository

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia de facturas.
type InvoiceRepository interface {
	// CreateIfAbsent inserta la factura si su InvoiceID no existe; created=false si ya estaba.
	CreateIfAbsent(ctx context.Context, invoice *entity.Invoice) (created bool, err error)
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, invoiceID string) (*entity.Invoice, error)
	// ListByPlate devuelve las facturas de la placa, más recientes primero.
	ListByPlate(ctx context.Context, plate string, limit int) ([]*entity.Invoice, error)
}
