package repository

import (
	"context"

	"DevSight/internal/domain/models"
	"DevSight/internal/domain/repository"
	pkgkafka "DevSight/pkg/kafka"
)

// KafkaLoginPublisher publishes login records as JSON, keyed by username.
type KafkaLoginPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ repository.LoginPublisher = (*KafkaLoginPublisher)(nil)

func NewKafkaLoginPublisher(producer *pkgkafka.Producer, topic string) *KafkaLoginPublisher {
	return &KafkaLoginPublisher{producer: producer, topic: topic}
}

func (p *KafkaLoginPublisher) Publish(ctx context.Context, r *models.LoginRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Username), r)
}

func (p *KafkaLoginPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
