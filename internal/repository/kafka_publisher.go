package repository

import (
	"context"

	"PairPulse/internal/domain/models"
	"PairPulse/internal/domain/repository"
	pkgkafka "PairPulse/pkg/kafka"
)

// KafkaTickPublisher mirrors persisted tick batches to a Kafka topic, keyed
// by symbol so per-symbol ordering survives partitioning.
type KafkaTickPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaTickPublisher(producer *pkgkafka.Producer, topic string) repository.TickPublisher {
	return &KafkaTickPublisher{producer: producer, topic: topic}
}

func (p *KafkaTickPublisher) PublishBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ticks))
	for i, t := range ticks {
		msgs[i] = pkgkafka.Message{
			Key: []byte(t.Symbol),
			Value: map[string]interface{}{
				"symbol": t.Symbol,
				"ts":     t.Ts.UnixMilli(),
				"price":  t.Price,
				"size":   t.Size,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaTickPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
