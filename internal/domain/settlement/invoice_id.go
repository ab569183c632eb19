package settlement

import "github.com/google/uuid"

// invoiceNamespace espacio de nombres para derivar IDs de factura (UUID v5).
var invoiceNamespace = uuid.MustParse("6f1c8a52-3d4e-5b7a-9c21-0e8f4d6a2b13")

// InvoiceIDFor deriva el ID de factura del evento: mismo evento, mismo ID.
func InvoiceIDFor(eventID string) string {
	return "INV-" + uuid.NewSHA1(invoiceNamespace, []byte(eventID)).String()
}
