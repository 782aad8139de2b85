// Package kafka publishes recorded predictions to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

const (
	defaultBatchTimeout = 50 * time.Millisecond
	headerTask          = "task"
)

// ErrNoBrokers is returned when the publisher is built without brokers.
var ErrNoBrokers = errors.New("kafka: no brokers")

// writer is the part of *kafka.Writer the publisher uses.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per prediction, keyed by prediction id so
// every record of a prediction lands on the same partition.
type Publisher struct {
	w     writer
	topic string
}

// NewPublisher creates a synchronous publisher for topic.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: defaultBatchTimeout,
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{w: w, topic: topic}, nil
}

// Topic returns the topic messages are written to.
func (p *Publisher) Topic() string { return p.topic }

// Write publishes ev's prediction as JSON. It satisfies worker.Sink.
func (p *Publisher) Write(ctx context.Context, ev model.Event) error { //nolint:gocritic // hugeParam: events travel by value
	value, err := json.Marshal(ev.Prediction)
	if err != nil {
		return fmt.Errorf("marshal prediction %s: %w", ev.EventID, err)
	}

	msg := kafkago.Message{
		Key:     []byte(ev.EventID),
		Value:   value,
		Time:    ev.Prediction.CreatedAt,
		Headers: []kafkago.Header{{Key: headerTask, Value: []byte(ev.Prediction.Task)}},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		metrics.RecordPublishError()
		return fmt.Errorf("publish prediction %s to %s: %w", ev.EventID, p.topic, err)
	}
	metrics.RecordPublish()
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
