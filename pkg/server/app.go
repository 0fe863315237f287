package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"IntelPull/internal/domain/repository"
	"IntelPull/internal/service/finnhub"
	"IntelPull/internal/usecase"
	"IntelPull/pkg/cache"
	"IntelPull/pkg/config"
	xhttp "IntelPull/pkg/http"
	applogger "IntelPull/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP facade, the cadence
// scheduler, the optional live stream, and orderly teardown of the sinks.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	handler   xhttp.Handler
	scheduler *usecase.Scheduler
	stream    *finnhub.Stream
	cache     cache.Service
	archive   repository.Archive
	publisher repository.EventPublisher

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	stream *finnhub.Stream,
	cacheSvc cache.Service,
	archive repository.Archive,
	publisher repository.EventPublisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		scheduler: scheduler,
		stream:    stream,
		cache:     cacheSvc,
		archive:   archive,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if lp, ok := a.publisher.(applogger.Publisher); ok {
		a.logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   time.Minute,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.Topic + ".logs",
			Publisher:      lp,
		})
	}

	if a.stream != nil {
		a.stream.Start(ctx)
		a.logger.Info("live stream started", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))
	}

	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.logger.Warn("stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("archive close error", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
