// Package pdf genera el comprobante de pago de un cruce de peaje.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: Peaje + ubicación │ N° Factura + Fecha│
//	│  ───────────────────────────────────────────── │
//	│  VEHÍCULO: Placa / Tipo de pagador / Medio     │
//	│  ───────────────────────────────────────────── │
//	│  DETALLE: Tarifa | IVA | Mora                  │
//	│  TOTAL PAGADO                                  │
//	│  ───────────────────────────────────────────── │
//	│  FOOTER: QR de verificación + leyenda          │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/application/history"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

var _ history.ReceiptGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa history.ReceiptGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer string
}

// NewMarotoPDFGenerator construye el generador; issuer es el nombre que encabeza el comprobante.
func NewMarotoPDFGenerator(issuer string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: nonEmpty(issuer, "Peajes")}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(
	_ context.Context,
	invoice *entity.Invoice,
	tollPoint *entity.TollPoint,
) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("pdf: factura requerida")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de peaje "+invoice.InvoiceID, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.issuer, invoice, tollPoint))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(vehicleRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(amountsRow(invoice))
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

const amountLineHeight = 6.5

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor + peaje (izq) y N° factura + fecha (der).
func headerRow(issuer string, invoice *entity.Invoice, tp *entity.TollPoint) core.Row {
	tollName, location := invoice.TollPointID, ""
	if tp != nil {
		tollName = nonEmpty(tp.Name, tp.ID)
		location = tp.Location
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(tollName, props.Text{Size: 9, Top: 8}),
			text.New(nonEmpty(location, "-"), props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE PAGO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceID, props.Text{
				Style: fontstyle.Bold, Size: 6.5, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+invoice.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// vehicleRow: placa, tipo de pagador y medio de pago.
func vehicleRow(invoice *entity.Invoice) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("VEHÍCULO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Plate, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5}),
			text.New(fmt.Sprintf("Pagador: %s   |   Medio de pago: %s   |   Cruce: %s",
				nonEmpty(invoice.Transaction.PayerClass.String(), "-"),
				nonEmpty(invoice.PaymentMethod, "-"),
				invoice.Transaction.CrossedAt.Format("02/01/2006 15:04"),
			), props.Text{Size: 7.5, Top: 11, Color: colorGray}),
		),
	)
}

// amountsRow: desglose alineado a la derecha, una línea cada amountLineHeight.
func amountsRow(invoice *entity.Invoice) core.Row {
	cur := invoice.Currency
	type amountLine struct {
		label, value string
		grand        bool
	}
	lines := []amountLine{
		{label: "Tarifa:", value: FormatMoney(cur, invoice.Subtotal)},
		{label: "IVA:", value: FormatMoney(cur, invoice.Tax)},
		{label: "Mora:", value: FormatMoney(cur, invoice.LateFee)},
	}
	if invoice.TagPaid.IsPositive() {
		lines = append(lines, amountLine{label: "Saldo del tag:", value: "-" + FormatMoney(cur, invoice.TagPaid)})
	}
	lines = append(lines, amountLine{label: "TOTAL PAGADO:", value: FormatMoney(cur, invoice.Amount), grand: true})

	labels := make([]core.Component, 0, len(lines))
	values := make([]core.Component, 0, len(lines))
	for i, l := range lines {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: float64(i) * amountLineHeight}
		if l.grand {
			p.Size = 10
			p.Color = colorPrimary
		}
		lp, vp := p, p
		lp.Right = 2
		vp.Right = 1
		if !l.grand {
			vp.Style = fontstyle.Normal
		}
		labels = append(labels, text.New(l.label, lp))
		values = append(values, text.New(l.value, vp))
	}

	return row.New(float64(len(lines)) * amountLineHeight).Add(
		col.New(2),
		col.New(5).Add(labels...),
		col.New(5).Add(values...),
	)
}

// footerRow: QR con los datos de verificación y leyenda.
func footerRow(invoice *entity.Invoice) core.Row {
	return row.New(36).Add(
		col.New(4).Add(code.NewQr(VerificationData(invoice), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Evento: "+invoice.EventID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New("Conserve este comprobante como soporte del pago del peaje.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// VerificationData cadena codificada en el QR: factura|evento|placa|monto|fecha.
func VerificationData(invoice *entity.Invoice) string {
	return strings.Join([]string{
		invoice.InvoiceID,
		invoice.EventID,
		invoice.Plate,
		invoice.Amount.StringFixed(2),
		invoice.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, "|")
}

// FormatMoney "GTQ 1,234.50".
func FormatMoney(currency string, d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "." + frac
	if neg {
		out = "-" + out
	}
	return strings.TrimSpace(currency + " " + out)
}

// groupThousands inserta comas de miles en un string numérico sin decimales.
// Ej: "25000" → "25,000", "1000000" → "1,000,000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
