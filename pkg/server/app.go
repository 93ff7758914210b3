package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DevSight/internal/handler/api"
	"DevSight/internal/service/ratelimit"
	"DevSight/internal/usecase"
	"DevSight/pkg/config"
	xhttp "DevSight/pkg/http"
	pkgkafka "DevSight/pkg/kafka"
	applogger "DevSight/pkg/logger"
)

// App owns the running service: HTTP server, optional Kafka consumer and
// the background limiter sweep.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	recorder   *usecase.LoginRecorder
	live       *api.LiveHub
	limiter    *ratelimit.Limiter
}

// New creates an App. consumer is nil unless the kafka backend is active.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	recorder *usecase.LoginRecorder,
	live *api.LiveHub,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		consumer:   consumer,
		recorder:   recorder,
		live:       live,
		limiter:    limiter,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.Topic))
	}

	go a.sweepLimiter(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("devsight started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("storage", a.cfg.Storage.Type),
		applogger.String("backend", a.cfg.Backend.Type))

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	a.shutdown()
	return nil
}

func (a *App) sweepLimiter(ctx context.Context) {
	if a.limiter == nil {
		return
	}
	idle := a.cfg.RateLimit.IdleTTL
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Prune(idle); n > 0 {
				a.log.Debug("rate limit buckets pruned", applogger.Int("removed", n))
			}
		}
	}
}

// shutdown stops intake first, then drains the consumer and closes storage.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	a.live.Close()

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	a.recorder.Close()
	a.log.Info("shutdown complete")
}
