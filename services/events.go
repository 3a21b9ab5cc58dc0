package services

import (
	"context"

	"restroom-cleanliness-api/models"

	"go.uber.org/zap"
)

// Publisher delivers score events to one sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event models.ScoreEvent) error
	Close() error
}

// Broadcaster fans score events out to every configured publisher.
// Publish failures are logged and counted, never returned.
type Broadcaster struct {
	logger     *zap.Logger
	publishers []Publisher
}

func NewBroadcaster(logger *zap.Logger, publishers ...Publisher) *Broadcaster {
	return &Broadcaster{logger: logger, publishers: publishers}
}

// Len reports the number of publishers.
func (b *Broadcaster) Len() int {
	return len(b.publishers)
}

// Publish hands event to every publisher and returns how many succeeded.
func (b *Broadcaster) Publish(ctx context.Context, event models.ScoreEvent) int {
	published := 0
	for _, p := range b.publishers {
		if err := p.Publish(ctx, event); err != nil {
			eventsFailed.WithLabelValues(p.Name()).Inc()
			b.logger.Warn("score event publish failed",
				zap.String("sink", p.Name()),
				zap.String("filename", event.Filename),
				zap.Error(err))
			continue
		}
		eventsPublished.WithLabelValues(p.Name()).Inc()
		published++
	}
	return published
}

func (b *Broadcaster) Close() {
	for _, p := range b.publishers {
		if err := p.Close(); err != nil {
			b.logger.Warn("score event publisher close failed", zap.String("sink", p.Name()), zap.Error(err))
		}
	}
}
