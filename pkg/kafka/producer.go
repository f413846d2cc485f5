package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// Producer wraps a Kafka writer.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchTimeout: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	writer := &kafka.Writer{
		Addr: kafka.TCP(cfg.Brokers...),
		// Hash by key so events for one series land on one partition.
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	}

	registerProducerMetrics()
	return &Producer{writer: writer}, nil
}

// Publish sends a message to the specified topic. Non-byte values are
// JSON-encoded.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	var v []byte
	switch val := value.(type) {
	case []byte:
		v = val
	case string:
		v = []byte(val)
	default:
		var err error
		v, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
	}

	start := time.Now()
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: v,
		Time:  time.Now(),
	})
	observePublish(topic, time.Since(start), err)
	return err
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}

var (
	producerMsgsTotal   *prometheus.CounterVec
	producerLatencyHist *prometheus.HistogramVec
	producerMetricsOnce sync.Once
)

func registerProducerMetrics() {
	producerMetricsOnce.Do(func() {
		producerMsgsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropulse_kafka_producer_messages_total",
				Help: "Total messages published to Kafka",
			},
			[]string{"topic", "result"},
		)
		producerLatencyHist = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macropulse_kafka_producer_publish_seconds",
				Help:    "Publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
	})
}

func observePublish(topic string, dur time.Duration, err error) {
	if producerMsgsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMsgsTotal.WithLabelValues(topic, result).Inc()
	producerLatencyHist.WithLabelValues(topic).Observe(dur.Seconds())
}
