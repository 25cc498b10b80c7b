package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"activity-signup/internal/models"

	"github.com/redis/go-redis/v9"
)

// Publisher is the subset of redis.Client the publisher uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes roster events as JSON on a pub/sub channel.
type RedisPublisher struct {
	client  Publisher
	channel string
}

func NewRedisPublisher(client Publisher, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Name() string {
	return "redis"
}

func (p *RedisPublisher) Notify(ctx context.Context, event models.RosterEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal roster event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}
