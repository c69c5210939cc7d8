package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/routinely/tracker/internal/core/domain"
)

// KafkaSink publishes emails to a topic for an external mailer to deliver.
// Messages are keyed by recipient so one user's emails stay on a partition.
type KafkaSink struct {
	writer *kafka.Writer
	from   string
}

// kafkaEmail is the published payload.
type kafkaEmail struct {
	domain.EmailMessage
	From string `json:"from"`
}

func NewKafkaSink(brokers []string, topic, from string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		from: from,
	}
}

func (s *KafkaSink) Send(ctx context.Context, msg domain.EmailMessage) error {
	payload, err := json.Marshal(kafkaEmail{EmailMessage: msg, From: s.from})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
