package dto

import "time"

// IngestRequest body para POST /api/webhook/toll (cruce reportado por la caseta).
type IngestRequest struct {
	Plate       string     `json:"placa"`
	TollPointID string     `json:"peaje_id"`
	Timestamp   *time.Time `json:"timestamp"`
	TagID       string     `json:"tag_id,omitempty"`
}

// IngestResponse cruce aceptado y encolado.
type IngestResponse struct {
	EventID    string    `json:"event_id"`
	Status     string    `json:"status"`
	IngestedAt time.Time `json:"ingested_at"`
}
