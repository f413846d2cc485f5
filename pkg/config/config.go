package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Fred struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Series  []SeedSeries  `yaml:"series"`
	} `yaml:"fred"`
	Store struct {
		Type  string `yaml:"type"` // memory or redis
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Refresh struct {
		Schedule   string        `yaml:"schedule"` // cron expression
		MonthsBack int           `yaml:"months_back"`
		LockTTL    time.Duration `yaml:"lock_ttl"`
		OnStart    bool          `yaml:"on_start"`
	} `yaml:"refresh"`
	Classifier struct {
		Mode string `yaml:"mode"` // discrete, gradient, acceleration
	} `yaml:"classifier"`
	Composite struct {
		FillPolicy string `yaml:"fill_policy"` // zero-fill or renormalize
	} `yaml:"composite"`
	Archive struct {
		Enabled    bool `yaml:"enabled"`
		ClickHouse struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			Database     string        `yaml:"database"`
			User         string        `yaml:"user"`
			Password     string        `yaml:"password"`
			DialTimeout  time.Duration `yaml:"dial_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
	Events struct {
		Enabled bool `yaml:"enabled"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"kafka"`
	} `yaml:"events"`
}

// SeedSeries declares a series tracked from first boot.
type SeedSeries struct {
	ID        string `yaml:"id"`
	Direction string `yaml:"direction"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables,
// then validates. The overlay runs before validation so a YAML file can leave
// secrets empty and supply them from the environment.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Fred.APIKey = v
	}
	if v := os.Getenv("STORE_TYPE"); v != "" {
		c.Store.Type = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Store.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REFRESH_SCHEDULE"); v != "" {
		c.Refresh.Schedule = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Fred.APIKey == "" {
		return fmt.Errorf("fred.api_key is required")
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	if c.Store.Type != "memory" && c.Store.Type != "redis" {
		return fmt.Errorf("store.type must be 'memory' or 'redis', got '%s'", c.Store.Type)
	}
	if c.Refresh.MonthsBack <= 0 {
		c.Refresh.MonthsBack = 24
	}
	if c.Refresh.MonthsBack > 240 {
		return fmt.Errorf("refresh.months_back must be at most 240")
	}
	switch c.Classifier.Mode {
	case "", "discrete", "gradient", "acceleration":
	default:
		return fmt.Errorf("classifier.mode must be discrete, gradient or acceleration, got '%s'", c.Classifier.Mode)
	}
	switch c.Composite.FillPolicy {
	case "", "zero-fill", "renormalize":
	default:
		return fmt.Errorf("composite.fill_policy must be 'zero-fill' or 'renormalize', got '%s'", c.Composite.FillPolicy)
	}
	if c.Events.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers cannot be empty when events are enabled")
	}
	if c.Archive.Enabled && c.Archive.ClickHouse.Host == "" {
		return fmt.Errorf("archive.clickhouse.host is required when the archive is enabled")
	}
	for _, s := range c.Fred.Series {
		if s.ID == "" {
			return fmt.Errorf("fred.series entries need an id")
		}
		if s.Direction != "" && s.Direction != "positive" && s.Direction != "negative" {
			return fmt.Errorf("fred.series %s: direction must be 'positive' or 'negative'", s.ID)
		}
	}
	return nil
}
