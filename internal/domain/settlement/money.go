// Package settlement agrupa los servicios de dominio puros del motor de liquidación:
// cálculo de cargos, débito sobre tag prepago, mora por tiempo y el ID determinista de factura.
// Ninguna función de este paquete hace I/O.
package settlement

import "github.com/shopspring/decimal"

// MoneyScale decimales con los que se expone todo monto.
const MoneyScale = 2

// DefaultCurrency moneda de liquidación (quetzales).
const DefaultCurrency = "GTQ"

var (
	// DefaultTaxRate IVA 12 %.
	DefaultTaxRate = decimal.RequireFromString("0.12")
	// DefaultLateFeePerMinute mora de 1.00 por minuto transcurrido.
	DefaultLateFeePerMinute = decimal.RequireFromString("1.00")
)

// RoundMoney redondea a MoneyScale. Se aplica al construir salidas, nunca en pasos intermedios.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
