package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/internal/domain/entity"
)

// Charge desglose monetario de un cruce.
type Charge struct {
	PayerClass entity.PayerClass
	AppliedFee decimal.Decimal // tarifa efectiva según tipo de pagador
	Discount   decimal.Decimal // BaseFee - AppliedFee cuando es positivo; solo trazabilidad
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	TaxRate    decimal.Decimal
	Currency   string
}

// ChargeCalculator tasa un cruce según el tipo de pagador (servicio de dominio).
//
//	Subtotal = tarifa(tipo)  (o tarifa base si no hay diferenciada)
//	Tax      = Subtotal * TaxRate
//	Total    = Subtotal + Tax
type ChargeCalculator struct {
	taxRate  decimal.Decimal
	currency string
}

// NewChargeCalculator construye la calculadora; valores vacíos toman los de Guatemala (12 %, GTQ).
func NewChargeCalculator(taxRate decimal.Decimal, currency string) ChargeCalculator {
	if taxRate.IsNegative() {
		taxRate = DefaultTaxRate
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return ChargeCalculator{taxRate: taxRate, currency: currency}
}

// Calculate devuelve el cargo redondeado a 2 decimales. Los intermedios se mantienen sin redondear.
func (c ChargeCalculator) Calculate(class entity.PayerClass, tp *entity.TollPoint) (Charge, error) {
	if !class.Valid() {
		return Charge{}, fmt.Errorf("%w: tipo de pagador %q", domain.ErrInvalidInput, class)
	}
	if tp == nil {
		return Charge{}, domain.ErrInvalidTollPoint
	}
	fee := tp.FeeFor(class)
	if !fee.IsPositive() {
		return Charge{}, fmt.Errorf("%w: peaje %s tarifa %s", domain.ErrInvalidTollPoint, tp.ID, fee.String())
	}

	subtotal := fee
	tax := subtotal.Mul(c.taxRate)
	total := subtotal.Add(tax)

	discount := decimal.Zero
	if d := tp.BaseFee.Sub(fee); d.IsPositive() {
		discount = d
	}

	return Charge{
		PayerClass: class,
		AppliedFee: RoundMoney(fee),
		Discount:   RoundMoney(discount),
		Subtotal:   RoundMoney(subtotal),
		Tax:        RoundMoney(tax),
		Total:      RoundMoney(total),
		TaxRate:    c.taxRate,
		Currency:   c.currency,
	}, nil
}
