package entity

import "time"

// Clases de registro de un vehículo.
const (
	RegistrationUnregistered = "unregistered"
	RegistrationRegistered   = "registered"
)

// Account es el vehículo registrado (clave única: placa). Solo lectura para el motor.
type Account struct {
	Plate             string
	OwnerName         string
	Email             string
	Phone             string
	RegistrationClass string
	TagID             string // tag vinculado, vacío si no tiene
	CreatedAt         time.Time
}

// IsRegistered indica si la cuenta liquida como usuario registrado.
func (a *Account) IsRegistered() bool {
	return a != nil && a.RegistrationClass != "" && a.RegistrationClass != RegistrationUnregistered
}
