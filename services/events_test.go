package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"restroom-cleanliness-api/config"
	"restroom-cleanliness-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	name   string
	err    error
	events []models.ScoreEvent
	closed bool
}

func (f *fakePublisher) Name() string { return f.name }

func (f *fakePublisher) Publish(_ context.Context, ev models.ScoreEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestBroadcasterPublish(t *testing.T) {
	ok := &fakePublisher{name: "ok"}
	broken := &fakePublisher{name: "broken", err: errors.New("broker down")}
	b := NewBroadcaster(zap.NewNop(), ok, broken)

	ev := models.ScoreEvent{TS: time.Now().UTC(), Filename: "a.jpg", Score: 9.1}
	assert.Equal(t, 1, b.Publish(context.Background(), ev))
	require.Len(t, ok.events, 1)
	assert.Equal(t, ev, ok.events[0])
	assert.Empty(t, broken.events)

	b.Close()
	assert.True(t, ok.closed)
	assert.True(t, broken.closed)
}

func TestBroadcasterEmpty(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Publish(context.Background(), models.ScoreEvent{}))
	b.Close()
}

func TestNewRedisPublisherInvalidURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), config.RedisConfig{URL: "not-a-url"}, zap.NewNop())
	assert.ErrorContains(t, err, "invalid REDIS_URL")
}

func TestNewRedisPublisherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedisPublisher(ctx, config.RedisConfig{URL: "redis://127.0.0.1:1/0"}, zap.NewNop())
	assert.ErrorContains(t, err, "cancelled")
}
