package settlement

import (
	"context"
	"time"
)

const notifyTimeout = 3 * time.Second

// publishBestEffort publica n y descarta el resultado: un fallo solo se registra y se cuenta.
// Se desacopla de la cancelación del caller porque el commit ya ocurrió.
func (r Runtime) publishBestEffort(ctx context.Context, n Notification) {
	if r.Publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := r.Publisher.Publish(pubCtx, n); err != nil {
		r.Observer.NotificationFailed(n.Kind)
		r.Log.Warn().Err(err).
			Str("kind", n.Kind).
			Str("event_id", n.EventID).
			Msg("notificación no enviada")
	}
}
