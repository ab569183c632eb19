package entity

import "github.com/shopspring/decimal"

// TollPoint es un peaje del catálogo con su esquema de tarifas.
// Dato de referencia inmutable para el motor; solo la administración del catálogo lo modifica.
type TollPoint struct {
	ID              string
	Name            string
	Location        string
	BaseFee         decimal.Decimal
	TagFee          decimal.NullDecimal // tarifa con tag prepago (ya incluye descuento)
	RegisteredFee   decimal.NullDecimal
	UnregisteredFee decimal.NullDecimal
}

// FeeFor devuelve la tarifa del tipo de pagador; si no está definida, la tarifa base.
func (t *TollPoint) FeeFor(class PayerClass) decimal.Decimal {
	var fee decimal.NullDecimal
	switch class {
	case PayerPrepaidTag:
		fee = t.TagFee
	case PayerRegistered:
		fee = t.RegisteredFee
	case PayerUnregistered:
		fee = t.UnregisteredFee
	}
	if fee.Valid {
		return fee.Decimal
	}
	return t.BaseFee
}
