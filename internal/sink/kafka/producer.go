package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"log-receiver/internal/model"
)

var produceErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "log_receiver_kafka_produce_errors_total",
	Help: "The total number of log entries the Kafka writer failed to deliver",
})

type Config struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink forwards accepted entries to a Kafka topic.
type Sink struct {
	writer messageWriter
	logger *zap.Logger
}

func NewSink(cfg Config, logger *zap.Logger) *Sink {
	s := &Sink{logger: logger}

	// Async writes return before delivery; failures surface in Completion.
	s.writer = &kafka.Writer{
		Addr:       kafka.TCP(cfg.Brokers...),
		Topic:      cfg.Topic,
		Balancer:   &kafka.LeastBytes{},
		Async:      true,
		Completion: s.onCompletion,
	}

	return s
}

func (s *Sink) onCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	produceErrors.Add(float64(len(messages)))
	s.logger.Error("Failed to deliver log entries to Kafka",
		zap.Int("count", len(messages)),
		zap.Error(err))
}

func (s *Sink) Write(ctx context.Context, entry model.Entry) error {
	msg, err := newMessage(entry)
	if err != nil {
		return err
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to produce log entry: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return s.writer.Close()
}

func newMessage(entry model.Entry) (kafka.Message, error) {
	value, err := json.Marshal(entry)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal log entry: %w", err)
	}

	return kafka.Message{
		Key:   []byte(entry.RemoteHost()),
		Value: value,
		Time:  entry.ReceivedAt,
	}, nil
}
