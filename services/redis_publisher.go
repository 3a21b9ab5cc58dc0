package services

import (
	"context"
	"encoding/json"
	"time"

	"restroom-cleanliness-api/config"
	"restroom-cleanliness-api/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisPingAttempts = 5
	redisPingInterval = 2 * time.Second
)

// RedisPublisher publishes score events on a Redis pub/sub channel and
// serves the same channel to live subscribers.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to cfg.URL, retrying the ping while the
// server comes up.
func NewRedisPublisher(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid REDIS_URL")
	}
	client := redis.NewClient(opts)

	var lastErr error
	for i := 0; i < redisPingAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return &RedisPublisher{client: client, channel: cfg.Channel}, nil
		}
		logger.Warn("redis ping failed",
			zap.Int("attempt", i+1),
			zap.Int("attempts", redisPingAttempts),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			client.Close()
			return nil, errors.Wrap(ctx.Err(), "redis connect cancelled")
		case <-time.After(redisPingInterval):
		}
	}

	client.Close()
	return nil, errors.Wrapf(lastErr, "redis ping failed after %d attempts", redisPingAttempts)
}

func (p *RedisPublisher) Name() string {
	return "redis"
}

func (p *RedisPublisher) Channel() string {
	return p.channel
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.ScoreEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal score event")
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscribe streams raw event payloads until ctx is done or the returned
// close func is called.
func (p *RedisPublisher) Subscribe(ctx context.Context) (<-chan string, func() error) {
	pubsub := p.client.Subscribe(ctx, p.channel)
	src := pubsub.Channel()
	out := make(chan string)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, pubsub.Close
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
