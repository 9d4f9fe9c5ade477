package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// EventPublisher fans request events out to live subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.RequestEvent) error
}

// RedisEventPublisher publishes events over Redis PubSub, on both the
// college channel and the global one.
type RedisEventPublisher struct {
	rdb *redis.Client
}

// NewRedisEventPublisher creates a new RedisEventPublisher.
func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{rdb: rdb}
}

// Publish sends ev as JSON.
func (p *RedisEventPublisher) Publish(ctx context.Context, ev model.RequestEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := p.rdb.Pipeline()
	if ev.College != "" {
		pipe.Publish(ctx, config.CacheKey.RequestEventsChannel(ev.College), payload)
	}
	pipe.Publish(ctx, config.CacheKey.RequestEventsChannel(""), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// NopEventPublisher drops every event.
type NopEventPublisher struct{}

// Publish implements EventPublisher.
func (NopEventPublisher) Publish(context.Context, model.RequestEvent) error { return nil }
