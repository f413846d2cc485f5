package kafka

import "time"

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	BatchSize    int
	BatchTimeout time.Duration
}

// WithBrokers sets Kafka brokers.
func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithCompression sets compression type.
func WithCompression(compression string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Compression = compression
	}
}

// WithRequiredAcks sets required acknowledgements (-1 = all).
func WithRequiredAcks(acks int) ProducerOption {
	return func(c *ProducerConfig) {
		c.RequiredAcks = acks
	}
}

// WithMaxAttempts sets max retry attempts by the writer.
func WithMaxAttempts(n int) ProducerOption {
	return func(c *ProducerConfig) {
		c.MaxAttempts = n
	}
}

// WithBatching sets batch size and flush timeout.
func WithBatching(size int, timeout time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.BatchSize = size
		c.BatchTimeout = timeout
	}
}

// WithWriterTimeouts sets writer write/read timeouts.
func WithWriterTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.WriteTimeout = write
		c.ReadTimeout = read
	}
}
