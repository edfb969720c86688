package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultBatchSize  = 100
	defaultInterval   = time.Second
	defaultMaxBackoff = 30 * time.Second
)

// Producer is the part of *kgo.Client the relay uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay moves unpublished outbox rows to a Kafka topic. Delivery is at least
// once: a crash between produce and mark publishes the batch again.
type Relay struct {
	store      Store
	producer   Producer
	topic      string
	batchSize  int
	interval   time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger
	metrics    *Metrics
}

type RelayOption func(*Relay)

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithMaxBackoff(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.maxBackoff = d
		}
	}
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) RelayOption {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(store Store, producer Producer, topic string, opts ...RelayOption) *Relay {
	r := &Relay{
		store:      store,
		producer:   producer,
		topic:      topic,
		batchSize:  defaultBatchSize,
		interval:   defaultInterval,
		maxBackoff: defaultMaxBackoff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Full batches are followed immediately by
// another poll; broker errors double the wait up to the configured maximum.
func (r *Relay) Run(ctx context.Context) error {
	wait := r.interval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		n, err := r.RunOnce(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			wait = min(max(wait, r.interval)*2, r.maxBackoff)
			r.logger.WarnContext(ctx, "outbox relay batch failed",
				"error", err,
				"retry_in", wait.String(),
			)
		case n == r.batchSize:
			wait = 0
		default:
			wait = r.interval
		}
		timer.Reset(wait)
	}
}

// RunOnce publishes at most one batch and returns how many rows it published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	n, err := r.store.ProcessBatch(ctx, r.batchSize, r.publish)
	if err != nil {
		if r.metrics != nil {
			r.metrics.IncrementFailures()
		}
		return 0, err
	}
	if r.metrics != nil {
		r.metrics.AddPublished(n)
	}
	return n, nil
}

func (r *Relay) publish(ctx context.Context, msgs []Message) error {
	records := make([]*kgo.Record, len(msgs))
	for i, m := range msgs {
		records[i] = &kgo.Record{
			Topic: r.topic,
			Key:   []byte(m.Key()),
			Value: m.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "event_type", Value: []byte(m.EventType)},
				{Key: "tenant_id", Value: []byte(m.TenantID)},
				{Key: "aggregate_type", Value: []byte(m.AggregateType)},
			},
			Timestamp: m.CreatedAt,
		}
	}
	if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce outbox batch: %w", err)
	}
	return nil
}
