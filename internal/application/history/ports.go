package history

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// ReceiptGenerator genera el comprobante PDF de una factura pagada.
// tollPoint puede ser nil si el peaje ya no está en el catálogo.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, invoice *entity.Invoice, tollPoint *entity.TollPoint) ([]byte, error)
}
