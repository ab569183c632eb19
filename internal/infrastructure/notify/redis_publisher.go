// Package notify publica las notificaciones del motor y los cruces ingresados:
// Redis pub/sub en despliegue y solo log en local.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Peajes-api/internal/application/ingest"
	"github.com/jhoicas/Peajes-api/internal/application/settlement"
	"github.com/jhoicas/Peajes-api/pkg/config"
)

var (
	_ settlement.Publisher = (*RedisPublisher)(nil)
	_ ingest.EventSink     = (*RedisPublisher)(nil)
)

// Canales por defecto.
const (
	DefaultChannel          = "peajes.notifications"
	DefaultCrossingsChannel = "peajes.crossings"
)

// channelPublisher es la parte de *redis.Client que se usa.
type channelPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publica notificaciones y cruces como JSON, cada tipo en su canal.
type RedisPublisher struct {
	client           channelPublisher
	closer           func() error
	channel          string
	crossingsChannel string
}

// NewRedisPublisher conecta con Redis según la configuración.
func NewRedisPublisher(cfg config.RedisConfig) (*RedisPublisher, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("notify: REDIS_ADDR requerido")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Password),
		DB:       cfg.DB,
	})
	p := NewRedisPublisherWithClient(client, cfg.Channel)
	if ch := strings.TrimSpace(cfg.CrossingsChannel); ch != "" {
		p.crossingsChannel = ch
	}
	p.closer = client.Close
	return p, nil
}

// NewRedisPublisherWithClient usa un cliente ya construido.
func NewRedisPublisherWithClient(client channelPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel, crossingsChannel: DefaultCrossingsChannel}
}

// Publish serializa n y lo publica en el canal de notificaciones.
func (p *RedisPublisher) Publish(ctx context.Context, n settlement.Notification) error {
	return p.publishJSON(ctx, p.channel, n)
}

// PublishCrossing encola un cruce ingresado para el orquestador.
func (p *RedisPublisher) PublishCrossing(ctx context.Context, ev ingest.CrossingEvent) error {
	return p.publishJSON(ctx, p.crossingsChannel, ev)
}

func (p *RedisPublisher) publishJSON(ctx context.Context, channel string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("notify: publish %s: %w", channel, err)
	}
	return nil
}

// Close libera la conexión si el publicador la creó.
func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
