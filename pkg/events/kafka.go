package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher streams settlement events to a Kafka topic for
// off-chain indexers. Delivery failures are logged and dropped; the
// auction engine's state never depends on the indexing pipeline.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

// NewKafkaPublisher creates a publisher for the given brokers/topic.
func NewKafkaPublisher(brokers []string, topic string, log *zap.SugaredLogger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		log: log,
	}
}

// Publish implements Transport.
func (p *KafkaPublisher) Publish(key, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		p.log.Errorw("kafka_publish_failed", "err", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }

var _ Transport = (*KafkaPublisher)(nil)
