package entity

import (
	"fmt"

	"github.com/jhoicas/Peajes-api/internal/domain"
)

// PayerClass clasifica a quien paga el cruce; determina la tarifa y el flujo de liquidación.
// Es un conjunto cerrado: cualquier valor fuera de las constantes se rechaza en el borde.
type PayerClass string

const (
	PayerUnregistered PayerClass = "unregistered"
	PayerRegistered   PayerClass = "registered"
	PayerPrepaidTag   PayerClass = "prepaid-tag"
)

// Valid indica si el valor pertenece al conjunto cerrado.
func (p PayerClass) Valid() bool {
	switch p {
	case PayerUnregistered, PayerRegistered, PayerPrepaidTag:
		return true
	}
	return false
}

// ParsePayerClass convierte texto externo en PayerClass o devuelve ErrInvalidInput.
func ParsePayerClass(s string) (PayerClass, error) {
	p := PayerClass(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: tipo de pagador %q", domain.ErrInvalidInput, s)
	}
	return p, nil
}

func (p PayerClass) String() string { return string(p) }
