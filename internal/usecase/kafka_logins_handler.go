package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"DevSight/internal/domain/models"
	drepo "DevSight/internal/domain/repository"
	pkgkafka "DevSight/pkg/kafka"
)

// KafkaLoginsHandler consumes published login records and stores them.
type KafkaLoginsHandler struct {
	topic    string
	store    drepo.LoginStore
	notifier drepo.LoginNotifier
	metrics  drepo.Metrics
}

func NewKafkaLoginsHandler(topic string, store drepo.LoginStore, notifier drepo.LoginNotifier, metrics drepo.Metrics) *KafkaLoginsHandler {
	return &KafkaLoginsHandler{topic: topic, store: store, notifier: notifier, metrics: metrics}
}

func (h *KafkaLoginsHandler) Topic() string { return h.topic }

func (h *KafkaLoginsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.LoginRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode login: %w", err)
	}
	if rec.Username == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("login without username")
	}
	if !rec.LoginTime.IsZero() {
		h.metrics.RecordLatency("ingest_e2e", time.Since(rec.LoginTime).Seconds())
	}

	start := time.Now()
	err := h.store.Insert(ctx, &rec)
	h.metrics.RecordLatency("store_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}

	if h.notifier != nil {
		h.notifier.NotifyLogin(&rec)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaLoginsHandler)(nil)
