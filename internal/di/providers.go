package di

import (
	"context"
	"fmt"
	"time"

	"IntelPull/internal/domain/repository"
	dservice "IntelPull/internal/domain/service"
	"IntelPull/internal/handler/api"
	internalrepo "IntelPull/internal/repository"
	"IntelPull/internal/service/finnhub"
	"IntelPull/internal/service/marinetraffic"
	"IntelPull/internal/service/newsapi"
	"IntelPull/internal/service/openai"
	"IntelPull/internal/service/opensky"
	"IntelPull/internal/service/ratelimit"
	"IntelPull/internal/service/reddit"
	"IntelPull/internal/usecase"
	"IntelPull/pkg/cache"
	pkgch "IntelPull/pkg/clickhouse"
	"IntelPull/pkg/config"
	xhttp "IntelPull/pkg/http"
	pkgkafka "IntelPull/pkg/kafka"
	applogger "IntelPull/pkg/logger"
	"IntelPull/pkg/metrics"
	"IntelPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the provider-payload cache: layered Redis+memory when
// Redis is configured, plain memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	memOpts := []cache.MemoryOption{cache.WithMemoryMaxSize(cfg.Cache.MemMaxSize)}

	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(memOpts...), nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache, memOpts...), nil
}

// ProvideRateLimiter creates the shared outbound-call limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideNewsSource creates the NewsAPI client.
func ProvideNewsSource(
	cfg *config.Config,
	cacheSvc cache.Service,
	rl *ratelimit.Limiter,
	m repository.Metrics,
	l *applogger.Logger,
) repository.NewsSource {
	return newsapi.New(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.Query, cfg.News.PageSize, cfg.News.Timeout).
		WithCache(cacheSvc, cfg.Cache.NewsTTL).
		WithRateLimit(rl).
		WithMetrics(m).
		WithLogger(l)
}

// ProvideFinnhubStream creates the optional live trade stream; nil when the
// stream is disabled.
func ProvideFinnhubStream(cfg *config.Config, l *applogger.Logger) *finnhub.Stream {
	if !cfg.Finnhub.Stream {
		return nil
	}
	return finnhub.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		l,
	)
}

// ProvideQuoteSource creates the Finnhub REST quote client.
func ProvideQuoteSource(
	cfg *config.Config,
	stream *finnhub.Stream,
	cacheSvc cache.Service,
	rl *ratelimit.Limiter,
	m repository.Metrics,
	l *applogger.Logger,
) repository.QuoteSource {
	c := finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, cfg.Finnhub.Symbols, cfg.Finnhub.Timeout).
		WithCache(cacheSvc, cfg.Cache.QuoteTTL).
		WithRateLimit(rl).
		WithMetrics(m).
		WithLogger(l)
	if stream != nil {
		c = c.WithStream(stream)
	}
	return c
}

// ProvideFlightSource creates the OpenSky client.
func ProvideFlightSource(
	cfg *config.Config,
	cacheSvc cache.Service,
	rl *ratelimit.Limiter,
	m repository.Metrics,
	l *applogger.Logger,
) repository.FlightSource {
	return opensky.New(cfg.OpenSky.BaseURL, cfg.OpenSky.Prefixes, cfg.OpenSky.MaxFlights, cfg.OpenSky.Timeout).
		WithCache(cacheSvc, cfg.Cache.FlightTTL).
		WithRateLimit(rl).
		WithMetrics(m).
		WithLogger(l)
}

// ProvideVesselSource creates the vessel placeholder.
func ProvideVesselSource() repository.VesselSource {
	return marinetraffic.New()
}

// ProvideSocialSource creates the Reddit OAuth search client.
func ProvideSocialSource(
	cfg *config.Config,
	cacheSvc cache.Service,
	rl *ratelimit.Limiter,
	m repository.Metrics,
	l *applogger.Logger,
) repository.SocialSource {
	return reddit.New(
		cfg.Reddit.ClientID,
		cfg.Reddit.Secret,
		cfg.Reddit.AuthURL,
		cfg.Reddit.SearchURL,
		cfg.Reddit.Subreddits,
		cfg.Reddit.Query,
		cfg.Reddit.Limit,
		cfg.Reddit.UserAgent,
		cfg.Reddit.Timeout,
	).
		WithCache(cacheSvc, cfg.Cache.SocialTTL).
		WithRateLimit(rl).
		WithMetrics(m).
		WithLogger(l)
}

// ProvideAnalyst creates the OpenAI chat-completions analyst.
func ProvideAnalyst(cfg *config.Config, l *applogger.Logger) dservice.Analyst {
	return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.MaxAttempts, cfg.OpenAI.Timeout).
		WithLogger(l)
}

// ProvideStateStore creates the in-process analysis state store.
func ProvideStateStore() repository.StateStore {
	return internalrepo.NewStateStore()
}

// ProvideArchive creates the optional ClickHouse history sink; nil when
// disabled.
func ProvideArchive(cfg *config.Config) (repository.Archive, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
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

// ProvidePublisher creates the optional Kafka event sink; nil without brokers.
func ProvidePublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideAggregator creates the source fan-out use case.
func ProvideAggregator(
	news repository.NewsSource,
	quotes repository.QuoteSource,
	flights repository.FlightSource,
	vessels repository.VesselSource,
	social repository.SocialSource,
	l *applogger.Logger,
) *usecase.AggregatorUsecase {
	return usecase.NewAggregatorUsecase(news, quotes, flights, vessels, social, l)
}

// ProvideScoreUsecase creates the heuristic score use case.
func ProvideScoreUsecase(agg *usecase.AggregatorUsecase, m repository.Metrics) *usecase.ScoreUsecase {
	return usecase.NewScoreUsecase(agg, m)
}

// ProvideAnalysisUsecase creates the tiered analysis pipeline.
func ProvideAnalysisUsecase(
	cfg *config.Config,
	agg *usecase.AggregatorUsecase,
	analyst dservice.Analyst,
	store repository.StateStore,
	archive repository.Archive,
	publisher repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisUsecase {
	u := usecase.NewAnalysisUsecase(agg, analyst, store, cfg.OpenAI.MiniModel, cfg.OpenAI.DeepModel, l).
		WithMetrics(m)
	if archive != nil {
		u = u.WithArchive(archive)
	}
	if publisher != nil {
		u = u.WithPublisher(publisher)
	}
	return u
}

// ProvideScheduler creates the cadence scheduler; nil when disabled.
func ProvideScheduler(cfg *config.Config, analysis *usecase.AnalysisUsecase, l *applogger.Logger) *usecase.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return usecase.NewScheduler(analysis, cfg.Scheduler.TickInterval, cfg.Scheduler.UTCOffset, l)
}

// ProvideHandler creates the HTTP facade.
func ProvideHandler(
	analysis *usecase.AnalysisUsecase,
	score *usecase.ScoreUsecase,
	news repository.NewsSource,
	quotes repository.QuoteSource,
	flights repository.FlightSource,
	vessels repository.VesselSource,
	social repository.SocialSource,
) xhttp.Handler {
	return api.NewHandler(analysis, score, news, quotes, flights, vessels, social)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	stream *finnhub.Stream,
	cacheSvc cache.Service,
	archive repository.Archive,
	publisher repository.EventPublisher,
) *server.App {
	return server.New(cfg, l, handler, scheduler, stream, cacheSvc, archive, publisher)
}
