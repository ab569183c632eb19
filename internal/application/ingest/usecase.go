// Package ingest recibe los cruces reportados por las casetas y los encola para el orquestador.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Peajes-api/internal/application/dto"
	"github.com/jhoicas/Peajes-api/internal/domain"
	"github.com/jhoicas/Peajes-api/pkg/logger"
)

// StatusQueued estado devuelto al aceptar un cruce.
const StatusQueued = "queued"

// CrossingEvent cruce con event_id asignado, tal como lo consume el orquestador.
type CrossingEvent struct {
	EventID     string    `json:"event_id"`
	Plate       string    `json:"placa"`
	TollPointID string    `json:"peaje_id"`
	TagID       string    `json:"tag_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// EventSink destino de los cruces aceptados. A diferencia de las notificaciones, un fallo se propaga.
type EventSink interface {
	PublishCrossing(ctx context.Context, ev CrossingEvent) error
}

// IngestUseCase valida el cruce, le asigna event_id y lo encola.
type IngestUseCase struct {
	sink  EventSink
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// NewIngestUseCase construye el caso de uso.
func NewIngestUseCase(sink EventSink, log *logger.Logger) *IngestUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &IngestUseCase{
		sink:  sink,
		log:   log.Named("ingest"),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *IngestUseCase) WithClock(now func() time.Time) *IngestUseCase {
	uc.now = now
	return uc
}

// Ingest acepta el cruce. placa, peaje_id y timestamp son obligatorios.
func (uc *IngestUseCase) Ingest(ctx context.Context, in dto.IngestRequest) (*dto.IngestResponse, error) {
	plate := strings.TrimSpace(in.Plate)
	tollPointID := strings.TrimSpace(in.TollPointID)

	var missing []string
	if plate == "" {
		missing = append(missing, "placa")
	}
	if tollPointID == "" {
		missing = append(missing, "peaje_id")
	}
	if in.Timestamp == nil || in.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: campos requeridos %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}

	ev := CrossingEvent{
		EventID:     uc.newID(),
		Plate:       plate,
		TollPointID: tollPointID,
		TagID:       strings.TrimSpace(in.TagID),
		Timestamp:   in.Timestamp.UTC(),
		IngestedAt:  uc.now(),
	}
	if err := uc.sink.PublishCrossing(ctx, ev); err != nil {
		return nil, fmt.Errorf("ingest: encolar cruce %s: %w", ev.EventID, err)
	}

	uc.log.Info().
		Str("event_id", ev.EventID).
		Str("placa", ev.Plate).
		Str("peaje_id", ev.TollPointID).
		Str("status", StatusQueued).
		Msg("cruce encolado")
	return &dto.IngestResponse{
		EventID:    ev.EventID,
		Status:     StatusQueued,
		IngestedAt: ev.IngestedAt,
	}, nil
}
