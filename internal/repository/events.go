package repository

import (
	"context"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	pkgkafka "MacroPulse/pkg/kafka"
)

// KafkaPublisher implements EventPublisher on a Kafka topic. Messages are
// keyed by series id so per-series events stay ordered.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) drepo.EventPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type seriesRefreshedEvent struct {
	Type         string    `json:"type"`
	Series       string    `json:"series"`
	Observations int       `json:"observations"`
	At           time.Time `json:"at"`
}

type batchCompletedEvent struct {
	Type      string            `json:"type"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
	TookMs    int64             `json:"took_ms"`
	At        time.Time         `json:"at"`
}

// SeriesRefreshed publishes a per-series refresh event.
func (p *KafkaPublisher) SeriesRefreshed(ctx context.Context, id string, observations int) error {
	ev := seriesRefreshedEvent{
		Type:         "series_refreshed",
		Series:       id,
		Observations: observations,
		At:           time.Now().UTC(),
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(id), ev); err != nil {
		return fmt.Errorf("publish series_refreshed %s: %w", id, err)
	}
	return nil
}

// BatchCompleted publishes the summary of one full refresh pass.
func (p *KafkaPublisher) BatchCompleted(ctx context.Context, report *models.RefreshReport) error {
	ev := batchCompletedEvent{
		Type:      "batch_completed",
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Errors:    report.Errors,
		TookMs:    report.Took.Milliseconds(),
		At:        time.Now().UTC(),
	}
	if err := p.producer.Publish(ctx, p.topic, []byte("batch"), ev); err != nil {
		return fmt.Errorf("publish batch_completed: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// MultiPublisher fans one event out to several publishers. Every publisher
// is attempted; the first error wins but does not stop the others.
type MultiPublisher []drepo.EventPublisher

func (m MultiPublisher) SeriesRefreshed(ctx context.Context, id string, observations int) error {
	var first error
	for _, p := range m {
		if err := p.SeriesRefreshed(ctx, id, observations); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiPublisher) BatchCompleted(ctx context.Context, report *models.RefreshReport) error {
	var first error
	for _, p := range m {
		if err := p.BatchCompleted(ctx, report); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiPublisher) Close() error {
	var first error
	for _, p := range m {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NopPublisher is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) SeriesRefreshed(context.Context, string, int) error { return nil }

func (NopPublisher) BatchCompleted(context.Context, *models.RefreshReport) error { return nil }

func (NopPublisher) Close() error { return nil }
