package di

import (
	"context"
	"fmt"
	"time"

	"MacroPulse/internal/domain/repository"
	"MacroPulse/internal/handler/api"
	"MacroPulse/internal/handler/ws"
	internalrepo "MacroPulse/internal/repository"
	"MacroPulse/internal/scheduler"
	"MacroPulse/internal/service/fred"
	"MacroPulse/internal/services/trend"
	"MacroPulse/internal/usecase"
	pkgch "MacroPulse/pkg/clickhouse"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	pkgkafka "MacroPulse/pkg/kafka"
	"MacroPulse/pkg/kv"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/metrics"
	"MacroPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Log.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Log.Format
	if format == "" {
		format = "json"
	}
	return applogger.New(&applogger.Config{
		Level:  level,
		Format: format,
		Output: cfg.Log.Output,
	})
}

// ProvideStore creates the key-value store backing all persisted state.
func ProvideStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Store.Type {
	case "redis":
		opts := []kv.RedisOption{
			kv.WithRedisPassword(cfg.Store.Redis.Password),
			kv.WithRedisDB(cfg.Store.Redis.DB),
		}
		if cfg.Store.Redis.Host != "" {
			opts = append(opts, kv.WithRedisHost(cfg.Store.Redis.Host))
		}
		if cfg.Store.Redis.Port != 0 {
			opts = append(opts, kv.WithRedisPort(cfg.Store.Redis.Port))
		}
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, kv.WithRedisPrefix(cfg.Store.Redis.Prefix))
		}
		store, err := kv.NewRedisStore(opts...)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return store, nil
	default:
		return kv.NewMemoryStore(), nil
	}
}

// ProvideSeriesRepository creates the kv-backed series repository with the
// configured lookback window as its default.
func ProvideSeriesRepository(cfg *config.Config, store kv.Store) repository.SeriesRepository {
	return internalrepo.NewKVSeriesRepository(store, cfg.Refresh.MonthsBack)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationProvider creates the FRED client.
func ProvideObservationProvider(cfg *config.Config) repository.ObservationProvider {
	timeout := cfg.Fred.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return fred.New(cfg.Fred.APIKey, cfg.Fred.BaseURL, timeout)
}

// ProvideArchive creates the ClickHouse observation archive, or a no-op when
// archiving is disabled.
func ProvideArchive(cfg *config.Config) (repository.ObservationArchive, error) {
	if !cfg.Archive.Enabled {
		return internalrepo.NopArchive{}, nil
	}

	ch := cfg.Archive.ClickHouse
	if ch.Port == 0 {
		ch.Port = 9000
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithClientTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	archive, err := internalrepo.NewClickHouseArchive(ctx, client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return archive, nil
}

// ProvideHub creates the websocket hub.
func ProvideHub(logger *applogger.Logger) *ws.Hub {
	return ws.NewHub(logger)
}

// ProvideEventPublisher combines the websocket hub with the optional Kafka
// publisher.
func ProvideEventPublisher(cfg *config.Config, hub *ws.Hub) (repository.EventPublisher, error) {
	publishers := internalrepo.MultiPublisher{hub}

	if cfg.Events.Enabled {
		k := cfg.Events.Kafka
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(k.Brokers),
			pkgkafka.WithCompression(k.Compression),
			pkgkafka.WithRequiredAcks(k.RequiredAcks),
			pkgkafka.WithMaxAttempts(k.MaxAttempts),
			pkgkafka.WithWriterTimeouts(k.WriteTimeout, k.ReadTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		topic := k.Topic
		if topic == "" {
			topic = "macropulse.refresh"
		}
		publishers = append(publishers, internalrepo.NewKafkaPublisher(producer, topic))
	}

	return publishers, nil
}

// ProvideRefresher creates the refresh usecase.
func ProvideRefresher(
	cfg *config.Config,
	provider repository.ObservationProvider,
	repo repository.SeriesRepository,
	archive repository.ObservationArchive,
	events repository.EventPublisher,
	m repository.Metrics,
	store kv.Store,
	logger *applogger.Logger,
) *usecase.Refresher {
	return usecase.NewRefresher(provider, repo, archive, events, m, store, cfg.Refresh.LockTTL, logger)
}

// ProvideIndicators creates the indicators usecase.
func ProvideIndicators(
	cfg *config.Config,
	repo repository.SeriesRepository,
	provider repository.ObservationProvider,
	refresher *usecase.Refresher,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.Indicators {
	return usecase.NewIndicators(
		repo,
		provider,
		refresher,
		m,
		logger,
		trend.NormalizeMode(cfg.Classifier.Mode),
		trend.NormalizeFillPolicy(cfg.Composite.FillPolicy),
	)
}

// ProvideHandler combines the REST API and the websocket endpoint.
func ProvideHandler(
	logger *applogger.Logger,
	indicators *usecase.Indicators,
	refresher *usecase.Refresher,
	hub *ws.Hub,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewIndicatorsHandler(logger, indicators, refresher),
		hub,
	}
}

// ProvideScheduler creates the cron refresh scheduler.
func ProvideScheduler(refresher *usecase.Refresher, logger *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(refresher, logger)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	refresher *usecase.Refresher,
	repo repository.SeriesRepository,
	store kv.Store,
	archive repository.ObservationArchive,
	events repository.EventPublisher,
) *server.App {
	return server.New(cfg, logger, handler, sched, refresher, repo, store, archive, events)
}
