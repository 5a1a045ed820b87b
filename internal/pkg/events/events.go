package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sink receives progress/filter/sort events from the orchestrator. Emission
// is observability only: sinks must never fail a search, so Emit returns
// nothing and implementations swallow (and log) their own errors.
type Sink interface {
	Emit(ctx context.Context, event string, payload interface{})
}

// NopSink is the absence of a real-time collaborator.
type NopSink struct{}

func (NopSink) Emit(context.Context, string, interface{}) {}

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes events on a pub/sub channel of the shared store.
type RedisSink struct {
	publisher Publisher
	channel   string
}

func NewRedisSink(publisher Publisher, channel string) *RedisSink {
	return &RedisSink{
		publisher: publisher,
		channel:   channel,
	}
}

type envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

func (s *RedisSink) Emit(ctx context.Context, event string, payload interface{}) {
	message, err := json.Marshal(envelope{
		Event:   event,
		Payload: payload,
		At:      time.Now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to marshal event",
			slog.String("event", event), slog.String("error", err.Error()))

		return
	}

	if err := s.publisher.Publish(ctx, s.channel, message).Err(); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			slog.String("event", event), slog.String("error", err.Error()))
	}
}
