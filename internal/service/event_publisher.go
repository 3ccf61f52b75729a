package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/middleware"
)

// Event types published after successful writes.
const (
	EventSubmissionCreated = "submission.created"
	EventSubmissionGraded  = "submission.graded"
	EventPaperDeleted      = "paper.deleted"
)

const eventStreamMaxLen = 10000

// Event is a domain event fanned out to external consumers.
type Event struct {
	Type          string                 `json:"type"`
	Actor         string                 `json:"actor"`
	EntityID      string                 `json:"entity_id"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// EventPublisher delivers domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type brokerPublisher struct {
	redis   *redis.Client
	stream  string
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewEventPublisher appends events to a Redis stream and publishes them on
// NATS. Either client may be nil.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &brokerPublisher{
		redis:   redisClient,
		stream:  stream,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *brokerPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.CorrelationID == "" {
		event.CorrelationID = middleware.CorrelationIDFromContext(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("event", event.Type).Msg("failed to encode event")
		return
	}

	if p.redis != nil && p.stream != "" {
		err := p.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: eventStreamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"type":    event.Type,
				"payload": string(payload),
			},
		}).Err()
		if err != nil {
			p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to append event to redis stream")
		}
	}

	if p.nats != nil && p.subject != "" {
		if err := p.nats.Publish(p.subject, payload); err != nil {
			p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish event to nats")
		}
	}
}

func publishEvent(ctx context.Context, publisher EventPublisher, event Event) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, event)
}
