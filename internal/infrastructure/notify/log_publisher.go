package notify

import (
	"context"

	"github.com/jhoicas/Peajes-api/internal/application/ingest"
	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/pkg/logger"
)

var (
	_ settlement.Publisher = (*LogPublisher)(nil)
	_ ingest.EventSink     = (*LogPublisher)(nil)
)

// LogPublisher escribe la notificación en el log; se usa cuando no hay REDIS_ADDR.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.Named("notify")}
}

// Publish nunca falla.
func (p *LogPublisher) Publish(_ context.Context, n settlement.Notification) error {
	p.log.Info().
		Str("kind", n.Kind).
		Str("type", n.Type).
		Str("event_id", n.EventID).
		Str("placa", n.Plate).
		Str("status", n.Status).
		Str("amount", n.Amount.StringFixed(2)).
		Str("invoice_id", n.InvoiceID).
		Msg(n.Message)
	return nil
}

// PublishCrossing registra el cruce; sin Redis nadie lo consume, se usa en local.
func (p *LogPublisher) PublishCrossing(_ context.Context, ev ingest.CrossingEvent) error {
	p.log.Info().
		Str("event_id", ev.EventID).
		Str("placa", ev.Plate).
		Str("peaje_id", ev.TollPointID).
		Str("tag_id", ev.TagID).
		Time("timestamp", ev.Timestamp).
		Msg("cruce recibido")
	return nil
}
