package worker

import (
	"context"
	"time"

	repo "kalamitraah/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultBatchSize = 100
	defaultTick      = time.Second
)

// Publisher relays one outbox event to the broker.
type Publisher interface {
	Publish(ctx context.Context, key string, eventType string, payload []byte) error
}

// OutboxPoller relays committed order events. Delivery is at least once:
// an event is marked published only after the broker accepted it.
type OutboxPoller struct {
	outbox    repo.OutboxRepository
	publisher Publisher
	log       *zap.Logger
	tick      time.Duration
	batchSize int
	now       func() time.Time
}

func NewOutboxPoller(outbox repo.OutboxRepository, publisher Publisher, log *zap.Logger) *OutboxPoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxPoller{
		outbox:    outbox,
		publisher: publisher,
		log:       log,
		tick:      defaultTick,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// Run polls until ctx is canceled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublished(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processUnpublished returns how many events were published.
func (p *OutboxPoller) processUnpublished(ctx context.Context) int {
	events, err := p.outbox.ListUnpublished(ctx, p.batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", zap.Error(err))
		return 0
	}

	published := 0
	for _, ev := range events {
		if err := p.publisher.Publish(ctx, ev.AggregateID, ev.EventType, []byte(ev.Payload)); err != nil {
			p.log.Warn("failed to publish outbox event", zap.String("event_id", ev.ID), zap.Error(err))
			continue
		}
		if err := p.outbox.MarkPublished(ctx, ev.ID, p.now()); err != nil {
			p.log.Warn("failed to mark outbox event published", zap.String("event_id", ev.ID), zap.Error(err))
			continue
		}
		published++
	}
	return published
}
