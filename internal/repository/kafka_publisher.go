package repository

import (
	"context"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
	"IntelPull/pkg/kafka"
)

// KafkaPublisher fans committed analyses out to downstream consumers, keyed
// by tier so each tier's events stay ordered within a partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

var _ drepo.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends one committed result.
func (p *KafkaPublisher) Publish(ctx context.Context, res *models.AnalysisResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(res.Tier), res)
}

// PublishMessage satisfies the logger's batch sink so aggregated error logs
// can ride the same producer.
func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
