package di

import (
	"context"
	"fmt"
	"time"

	"PairPulse/internal/buffer"
	"PairPulse/internal/domain/repository"
	"PairPulse/internal/handler/api"
	mid "PairPulse/internal/middleware"
	internalrepo "PairPulse/internal/repository"
	"PairPulse/internal/service/binance"
	icache "PairPulse/internal/service/cache"
	"PairPulse/internal/usecase"
	pkgch "PairPulse/pkg/clickhouse"
	"PairPulse/pkg/config"
	xhttp "PairPulse/pkg/http"
	pkgkafka "PairPulse/pkg/kafka"
	applogger "PairPulse/pkg/logger"
	"PairPulse/pkg/metrics"
	"PairPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	return applogger.New(&applogger.Config{
		Level:  level,
		Format: format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideTickStore creates the tick storage repository and its schema.
func ProvideTickStore(chClient *pkgch.Client, cfg *config.Config) (repository.TickStore, error) {
	store := internalrepo.NewClickHouseTickStore(chClient.DB(), cfg.ClickHouse.Table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("tick store init: %w", err)
	}
	return store, nil
}

// ProvideTickPublisher creates the optional Kafka mirror publisher. It is
// nil when Kafka is disabled.
func ProvideTickPublisher(cfg *config.Config) (repository.TickPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMarketStream creates the Binance WebSocket adapter.
func ProvideMarketStream(cfg *config.Config, logger *applogger.Logger, m repository.Metrics) repository.MarketStream {
	return binance.New(cfg.Binance.WebSocketURL, logger, m,
		binance.WithBackoff(cfg.Binance.BackoffMin, cfg.Binance.BackoffMax),
		binance.WithChannelDepth(cfg.Binance.ChannelDepth),
	)
}

// ProvideTickBuffer creates the hot buffer pre-sized for configured symbols.
func ProvideTickBuffer(cfg *config.Config) *buffer.TickBuffer {
	buf := buffer.New(cfg.Pipeline.BufferSize)
	buf.Configure(cfg.Binance.Symbols)
	return buf
}

// ProvideIngestPipeline creates the validation and fan-out stage.
func ProvideIngestPipeline(buf *buffer.TickBuffer, m repository.Metrics, cfg *config.Config) *mid.IngestPipeline {
	opts := []mid.PipelineOption{}
	if cfg.Pipeline.QueueSize > 0 {
		opts = append(opts, mid.WithQueueSize(cfg.Pipeline.QueueSize))
	}
	return mid.NewIngestPipeline(buf, m, opts...)
}

// ProvideTickCollector creates the per-symbol collection loops.
func ProvideTickCollector(stream repository.MarketStream, pipe *mid.IngestPipeline, m repository.Metrics, logger *applogger.Logger) *usecase.TickCollector {
	return usecase.NewTickCollector(stream, pipe, m, logger)
}

// ProvidePersistenceWorker creates the batch flush worker.
func ProvidePersistenceWorker(
	store repository.TickStore,
	pipe *mid.IngestPipeline,
	pub repository.TickPublisher,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.PersistenceWorker {
	opts := []usecase.WorkerOption{
		usecase.WithBatchSize(cfg.Persistence.BatchSize),
		usecase.WithFlushInterval(cfg.Persistence.FlushInterval),
		usecase.WithMaxFailures(cfg.Persistence.MaxFailures),
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	return usecase.NewPersistenceWorker(store, pipe.Queue(), m, logger, opts...)
}

// ProvideAlertEngine creates the alert rule engine.
func ProvideAlertEngine(m repository.Metrics, logger *applogger.Logger, cfg *config.Config) *usecase.AlertEngine {
	opts := []usecase.AlertOption{}
	if cfg.Analytics.AlertHistoryLimit > 0 {
		opts = append(opts, usecase.WithHistoryLimit(cfg.Analytics.AlertHistoryLimit))
	}
	return usecase.NewAlertEngine(m, logger, opts...)
}

// ProvideLiveBroadcaster creates the periodic live metrics loop.
func ProvideLiveBroadcaster(buf *buffer.TickBuffer, alerts *usecase.AlertEngine, m repository.Metrics, logger *applogger.Logger, cfg *config.Config) *usecase.LiveBroadcaster {
	return usecase.NewLiveBroadcaster(buf, alerts, m, logger,
		usecase.WithBroadcastInterval(cfg.Analytics.BroadcastInterval),
		usecase.WithPair(cfg.Analytics.PairA, cfg.Analytics.PairB),
		usecase.WithWindow(cfg.Analytics.Window),
	)
}

// ProvideBytesCache picks the snapshot cache backend.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Analytics.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Analytics.Redis.Addr,
			Password: cfg.Analytics.Redis.Password,
			DB:       cfg.Analytics.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideMarketDataUseCase creates the historical read path.
func ProvideMarketDataUseCase(store repository.TickStore, buf *buffer.TickBuffer, collector *usecase.TickCollector, logger *applogger.Logger) *usecase.MarketDataUseCase {
	return usecase.NewMarketDataUseCase(store, buf, collector, logger)
}

// ProvidePairAnalyticsUseCase creates the on-demand analytics path.
func ProvidePairAnalyticsUseCase(data *usecase.MarketDataUseCase, c icache.BytesCache, cfg *config.Config, logger *applogger.Logger) *usecase.PairAnalyticsUseCase {
	return usecase.NewPairAnalyticsUseCase(data, c, cfg.Analytics.CacheTTL, logger)
}

// ProvideRouter aggregates the API handlers.
func ProvideRouter(
	logger *applogger.Logger,
	data *usecase.MarketDataUseCase,
	pair *usecase.PairAnalyticsUseCase,
	alerts *usecase.AlertEngine,
	broadcaster *usecase.LiveBroadcaster,
	store repository.TickStore,
	collector *usecase.TickCollector,
	buf *buffer.TickBuffer,
) xhttp.Handler {
	return api.NewRouter(
		api.NewMarketDataHandler(logger, data),
		api.NewAnalyticsHandler(logger, pair),
		api.NewAlertsHandler(logger, alerts),
		api.NewLiveHandler(logger, broadcaster),
		api.NewHealthHandler(logger, store, collector, buf),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TickCollector,
	worker *usecase.PersistenceWorker,
	broadcaster *usecase.LiveBroadcaster,
	stream repository.MarketStream,
	chClient *pkgch.Client,
	pub repository.TickPublisher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, logger, collector, worker, broadcaster, stream, chClient, pub, handler)
}
