package kv

import "time"

// RedisOption configures the Redis store.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

// WithRedisHost sets Redis host.
func WithRedisHost(host string) RedisOption {
	return func(c *RedisConfig) {
		c.Host = host
	}
}

// WithRedisPort sets Redis port.
func WithRedisPort(port int) RedisOption {
	return func(c *RedisConfig) {
		c.Port = port
	}
}

// WithRedisPassword sets Redis password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

// WithRedisDB sets Redis database number.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

// WithRedisPool sets connection pool settings.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
		c.PoolTimeout = timeout
	}
}

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}
