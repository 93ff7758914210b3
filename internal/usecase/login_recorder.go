package usecase

import (
	"context"
	"fmt"
	"time"

	"DevSight/internal/domain/models"
	drepo "DevSight/internal/domain/repository"
	applogger "DevSight/pkg/logger"
)

const (
	BackendDirect = "direct"
	BackendKafka  = "kafka"
)

// LoginRecorder persists login records through the configured backend.
type LoginRecorder struct {
	store    drepo.LoginStore
	pub      drepo.LoginPublisher
	notifier drepo.LoginNotifier
	metrics  drepo.Metrics
	backend  string
	log      *applogger.Logger
}

// NewLoginRecorder creates a recorder. pub may be nil unless backend is
// kafka; notifier may be nil.
func NewLoginRecorder(
	store drepo.LoginStore,
	pub drepo.LoginPublisher,
	notifier drepo.LoginNotifier,
	metrics drepo.Metrics,
	backend string,
	log *applogger.Logger,
) *LoginRecorder {
	if log == nil {
		log = applogger.NewNop()
	}
	return &LoginRecorder{
		store:    store,
		pub:      pub,
		notifier: notifier,
		metrics:  metrics,
		backend:  backend,
		log:      log.With(applogger.String("component", "login_recorder")),
	}
}

// Record stores rec directly or hands it to Kafka.
func (r *LoginRecorder) Record(ctx context.Context, rec *models.LoginRecord) error {
	if rec == nil {
		return fmt.Errorf("login record is nil")
	}

	start := time.Now()
	var err error
	switch r.backend {
	case BackendKafka:
		if r.pub == nil {
			err = fmt.Errorf("kafka backend without publisher")
			break
		}
		err = r.pub.Publish(ctx, rec)
	case BackendDirect, "":
		err = r.store.Insert(ctx, rec)
		if err == nil {
			r.notify(rec)
		}
	default:
		err = fmt.Errorf("unknown backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("record_login")
		return fmt.Errorf("record login: %w", err)
	}

	r.metrics.RecordLatency("record_login", time.Since(start).Seconds())
	observeLogin(r.metrics, rec)
	r.log.Info("login recorded",
		applogger.String("backend", r.backend),
		applogger.String("username", rec.Username),
		applogger.String("model_code", rec.ModelCode),
		applogger.String("price_source", string(rec.PriceSource)))
	return nil
}

func (r *LoginRecorder) notify(rec *models.LoginRecord) {
	if r.notifier != nil {
		r.notifier.NotifyLogin(rec)
	}
}

// Close releases the publisher and the store.
func (r *LoginRecorder) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}

func observeLogin(m drepo.Metrics, rec *models.LoginRecord) {
	m.RecordLogin(rec.OSType, rec.Brand != nil)
	m.RecordPriceSource(string(rec.PriceSource))
}
