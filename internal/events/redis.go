package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/phrazzld/career-coach/internal/events")

// RedisPublisher publishes events as JSON to a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

// NewRedisPublisher creates a RedisPublisher for channel.
func NewRedisPublisher(client redis.UniversalClient, channel string, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "redis_event_publisher"),
	}
}

// HandleEvent implements EventHandler.
func (p *RedisPublisher) HandleEvent(ctx context.Context, event *SessionEvent) error {
	ctx, span := tracer.Start(ctx, "Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", p.channel),
			attribute.String("event.type", event.Type),
		))
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "event published",
		"event_id", event.ID.String(),
		"event_type", event.Type,
		"receivers", receivers)
	span.SetStatus(codes.Ok, "event published")
	return nil
}
