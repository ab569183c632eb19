package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Taxonomía:
//   - validación: ErrInvalidInput, ErrInvalidAmount, ErrInvalidTollPoint
//   - no encontrado: ErrNotFound y sus variantes por entidad
//   - conflicto de estado: ErrInvalidTag, ErrAlreadySettled, ErrDuplicate
//   - concurrencia: ErrConcurrentUpdateConflict (tras agotar reintentos), ErrVersionConflict (almacenamiento)
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrAccountNotFound     = errors.New("placa no registrada")
	ErrTagNotFound         = errors.New("tag no encontrado")
	ErrTollPointNotFound   = errors.New("peaje no encontrado en el catálogo")
	ErrTransactionNotFound = errors.New("transacción no encontrada")

	ErrInvalidInput     = errors.New("entrada inválida")
	ErrInvalidAmount    = errors.New("el monto debe ser mayor que cero")
	ErrInvalidTollPoint = errors.New("peaje sin tarifa válida")

	ErrInvalidTag     = errors.New("tag inactivo o no corresponde a la placa")
	ErrAlreadySettled = errors.New("la transacción ya fue liquidada")
	ErrDuplicate      = errors.New("recurso duplicado")

	// ErrVersionConflict lo devuelve el almacenamiento cuando falla una escritura condicional.
	ErrVersionConflict = errors.New("versión desactualizada")
	// ErrConcurrentUpdateConflict se entrega al caller cuando se agotan los reintentos optimistas.
	ErrConcurrentUpdateConflict = errors.New("conflicto de actualización concurrente, reintente la operación")
)
