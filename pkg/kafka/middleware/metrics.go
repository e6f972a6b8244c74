package kafka_middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"lodge/pkg/kafka"
)

// Metrics counts producer outcomes since process start.
type Metrics struct {
	published            atomic.Int64
	failed               atomic.Int64
	deadLettered         atomic.Int64
	publishDurationTotal atomic.Int64 // nanoseconds, successful publishes only
}

// MetricsSnapshot is a point-in-time copy, safe to serialize.
type MetricsSnapshot struct {
	Published    int64   `json:"published"`
	Failed       int64   `json:"failed"`
	DeadLettered int64   `json:"deadLettered"`
	AvgPublishMs float64 `json:"avgPublishMs"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	s := MetricsSnapshot{
		Published:    published,
		Failed:       m.failed.Load(),
		DeadLettered: m.deadLettered.Load(),
	}
	if published > 0 {
		avg := time.Duration(m.publishDurationTotal.Load() / published)
		s.AvgPublishMs = float64(avg.Microseconds()) / 1000
	}
	return s
}

// MetricsProducerMiddleware records every publish. A failed write that still
// reached the dead letter topic counts as both failed and dead-lettered.
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)
		if err == nil {
			m.published.Add(1)
			m.publishDurationTotal.Add(int64(time.Since(start)))
			return nil
		}

		m.failed.Add(1)
		var pubErr *kafka.PublishError
		if errors.As(err, &pubErr) && pubErr.DeadLettered {
			m.deadLettered.Add(1)
		}
		return err
	}
}
