package publish

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"emwin_parser/internal/storage"
)

// KafkaConfig holds Kafka producer settings.
type KafkaConfig struct {
	Brokers    []string `yaml:"brokers,omitempty"`
	Topic      string   `yaml:"topic"`
	ImageTopic string   `yaml:"image_topic"`
}

// Kafka produces one message per record, keyed by bulletin ID so that
// replays of a bulletin land on the same partition.
type Kafka struct {
	writer     *kafkago.Writer
	topic      string
	imageTopic string
}

// NewKafka creates a producer for the configured topics. The connection is
// made on first write.
func NewKafka(cfg KafkaConfig) *Kafka {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	imageTopic := cfg.ImageTopic
	if imageTopic == "" {
		imageTopic = cfg.Topic
	}
	return &Kafka{writer: w, topic: cfg.Topic, imageTopic: imageTopic}
}

func (k *Kafka) StoreReport(ctx context.Context, r storage.Record) error {
	msg, err := reportMessage(k.topic, r)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (k *Kafka) StoreImage(ctx context.Context, r storage.ImageRecord) error {
	data, err := encodeImage(r)
	if err != nil {
		return err
	}
	msg := kafkago.Message{
		Topic: k.imageTopic,
		Key:   []byte(r.ID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_type", Value: []byte("goes_image")},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

func reportMessage(topic string, r storage.Record) (kafkago.Message, error) {
	data, err := encodeReport(r)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(r.BulletinID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_type", Value: []byte(r.ReportType)},
			{Key: "received", Value: []byte(r.Received.UTC().Format(time.RFC3339))},
		},
	}, nil
}
