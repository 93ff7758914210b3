package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"DevSight/internal/domain/repository"
	"DevSight/internal/handler/api"
	internalrepo "DevSight/internal/repository"
	"DevSight/internal/service/catalog"
	"DevSight/internal/service/pricing"
	"DevSight/internal/service/ratelimit"
	"DevSight/internal/usecase"
	"DevSight/pkg/cache"
	pkgch "DevSight/pkg/clickhouse"
	"DevSight/pkg/config"
	xhttp "DevSight/pkg/http"
	pkgkafka "DevSight/pkg/kafka"
	applogger "DevSight/pkg/logger"
	"DevSight/pkg/metrics"
	"DevSight/pkg/server"
)

const startupTimeout = 10 * time.Second

func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCatalog loads the device catalog. A load failure leaves an empty
// or partial catalog unless catalog.required is set.
func ProvideCatalog(cfg *config.Config, log *applogger.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.DevicesCSV, cfg.Catalog.PricesCSV)
	if err != nil {
		if cfg.Catalog.Required {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		log.Warn("catalog load incomplete", applogger.Error(err))
	}
	log.Info("catalog loaded",
		applogger.Int("devices", cat.Len()),
		applogger.Int("skipped_rows", cat.Skipped()))
	return cat, nil
}

// ProvidePriceCache opens the configured price cache backend.
func ProvidePriceCache(cfg *config.Config) (cache.Service, func(), error) {
	cc := cfg.Pricing.Cache
	var (
		svc cache.Service
		err error
	)
	switch cc.Type {
	case config.CacheRedis, config.CacheLayered:
		var rc *cache.RedisCache
		rc, err = cache.NewRedisCache(
			cache.WithRedisHost(cc.Redis.Host),
			cache.WithRedisPort(cc.Redis.Port),
			cache.WithRedisPassword(cc.Redis.Password),
			cache.WithRedisDB(cc.Redis.DB),
			cache.WithRedisPrefix(cc.Redis.Prefix),
		)
		if err == nil {
			svc = rc
			if cc.Type == config.CacheLayered {
				svc = cache.NewLayeredCache(cache.NewMemoryCache(), rc, cc.L1TTL)
			}
		}
	case config.CacheLevelDB:
		svc, err = cache.NewLevelCache(cc.Path, cache.WithLevelPrefix("price"))
	default:
		svc = cache.NewMemoryCache()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("price cache (%s): %w", cc.Type, err)
	}
	return svc, func() { _ = svc.Close() }, nil
}

func ProvideSampler(cfg *config.Config, c cache.Service, log *applogger.Logger, m repository.Metrics) *pricing.Sampler {
	p := cfg.Pricing
	opts := []pricing.Option{
		pricing.WithSearchURL(p.SearchURL),
		pricing.WithTimeout(p.Timeout),
		pricing.WithRequestDelay(p.RequestDelay),
		pricing.WithCacheDuration(p.Cache.TTL),
		pricing.WithPriceBand(p.PriceMin, p.PriceMax),
		pricing.WithPageSize(p.PageSize),
	}
	if p.UserAgent != "" {
		opts = append(opts, pricing.WithUserAgent(p.UserAgent))
	}
	return pricing.NewSampler(c, log, m, opts...)
}

func ProvideIdentifier(cat *catalog.Catalog, sampler *pricing.Sampler, log *applogger.Logger) *usecase.Identifier {
	return usecase.NewIdentifier(cat, sampler, log)
}

// ProvideLoginStore opens the configured store and ensures its table.
// The cleanup only releases what the store itself does not own.
func ProvideLoginStore(cfg *config.Config, log *applogger.Logger) (repository.LoginStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var (
		store   repository.LoginStore
		cleanup = func() {}
	)
	switch cfg.Storage.Type {
	case config.StoragePostgres:
		pg, err := internalrepo.NewPostgresLoginStore(ctx, cfg.Postgres.DSN, cfg.Storage.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		store = pg
	case config.StorageClickHouse:
		ch := cfg.ClickHouse
		client, err := pkgch.NewClient(ctx,
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(ch.UseHTTP),
			pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewClickHouseLoginStore(client.DB(), cfg.Storage.Table)
		cleanup = func() { _ = client.Close() }
	default:
		store = internalrepo.NewMemoryLoginStore()
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		cleanup()
		return nil, nil, fmt.Errorf("init %s store: %w", cfg.Storage.Type, err)
	}
	log.Info("login store ready", applogger.String("type", cfg.Storage.Type), applogger.String("table", cfg.Storage.Table))
	return store, cleanup, nil
}

func ProvideLiveHub(log *applogger.Logger) *api.LiveHub {
	return api.NewLiveHub(log)
}

// ProvideLoginPublisher returns nil unless backend.type is kafka.
func ProvideLoginPublisher(cfg *config.Config) (repository.LoginPublisher, error) {
	if cfg.Backend.Type != config.BackendKafka {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaLoginPublisher(producer, cfg.Kafka.Topic), nil
}

func ProvideLoginRecorder(
	cfg *config.Config,
	store repository.LoginStore,
	pub repository.LoginPublisher,
	live *api.LiveHub,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.LoginRecorder {
	return usecase.NewLoginRecorder(store, pub, live, m, cfg.Backend.Type, log)
}

// ProvideKafkaConsumer returns nil unless backend.type is kafka. The consumer
// writes published logins into the store and pushes them to the live hub.
func ProvideKafkaConsumer(
	cfg *config.Config,
	store repository.LoginStore,
	live *api.LiveHub,
	m repository.Metrics,
	log *applogger.Logger,
) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != config.BackendKafka {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerDLQ(kc.DLQTopic),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewKafkaLoginsHandler(cfg.Kafka.Topic, store, live, m))
	consumer.WithConsumerHook(pkgkafka.NewLoggingHook(log))
	return consumer, nil
}

func ProvideReports(cfg *config.Config, store repository.LoginStore) *usecase.Reports {
	return usecase.NewReports(store, cfg.Reports.OutputDir)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
}

func ProvideRouter(
	log *applogger.Logger,
	identifier *usecase.Identifier,
	recorder *usecase.LoginRecorder,
	store repository.LoginStore,
	reports *usecase.Reports,
	cat *catalog.Catalog,
	sampler *pricing.Sampler,
	live *api.LiveHub,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewRouter(
		api.NewPortalHandler(log.With(applogger.String("handler", "portal")), identifier, recorder),
		api.NewAdminHandler(log.With(applogger.String("handler", "admin")), store, reports, cat, sampler),
		live,
		limiter,
	)
}

func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, log *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadHeaderTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(log),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	recorder *usecase.LoginRecorder,
	live *api.LiveHub,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, log, srv, consumer, recorder, live, limiter)
}
