package dto

// Límites de los listados por placa.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HistoryQuery filtros del historial por placa (query string).
type HistoryQuery struct {
	Status          string
	RequiresPayment *bool
	Limit           int
}

// Normalize aplica el límite por defecto y el máximo.
func (q *HistoryQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
}
