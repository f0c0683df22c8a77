package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
)

// Publisher writes event batches. *kafka.Producer satisfies it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// CollectorConfig sizes the collector. Zero fields take defaults.
type CollectorConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

// Collector buffers chat events and publishes them in batches, either when
// a batch fills up or on every flush interval. Track never blocks: events
// are dropped when the buffer is full.
type Collector struct {
	publisher     Publisher
	eventCh       chan ChatEvent
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
	done          chan struct{}
}

// NewCollector creates a Collector. m may be nil.
func NewCollector(publisher Publisher, cfg CollectorConfig, m *metrics.Metrics) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan ChatEvent, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		metrics:       m,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the background publish loop. The loop ends, after a final
// flush, when ctx is cancelled or Close is called.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.flush(context.Background(), batch)
					return
				}
				batch = append(batch, toKafkaEvent(event))
				if len(batch) >= c.batchSize {
					batch = c.flush(ctx, batch)
				}
			case <-ticker.C:
				batch = c.flush(ctx, batch)
			case <-ctx.Done():
				c.drainRemaining(batch)
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track queues an event for publishing.
func (c *Collector) Track(event ChatEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.metrics.AnalyticsDropped()
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the final flush.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 {
		return batch
	}
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("failed to publish analytics batch",
			"batch_size", len(batch),
			"error", err,
		)
	} else {
		c.logger.Debug("analytics batch flushed", "events", len(batch))
	}
	return batch[:0]
}

func (c *Collector) drainRemaining(batch []kafka.Event) {
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.flush(flushCtx, batch)
				return
			}
			batch = append(batch, toKafkaEvent(event))
		default:
			c.flush(flushCtx, batch)
			return
		}
	}
}

func toKafkaEvent(event ChatEvent) kafka.Event {
	return kafka.Event{Key: event.Method, Value: event}
}
