// Package kafka publishes outcome records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink wraps a Kafka writer. Messages are keyed by the item URL so replays
// of the same URL land in the same partition.
type Sink struct {
	writer messageWriter
}

// New creates a Kafka sink for the given brokers and topic.
func New(brokers []string, topic string) *Sink {
	return &Sink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: false,
		},
	}
}

// NewWithWriter builds a sink using a custom writer (tests).
func NewWithWriter(writer messageWriter) *Sink {
	return &Sink{writer: writer}
}

// Write publishes the outcome as JSON.
func (s *Sink) Write(ctx context.Context, outcome crawler.Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(outcome.URL),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write outcome %s: %w", outcome.URL, err)
	}
	return nil
}

// Close shuts down the underlying writer.
func (s *Sink) Close() error {
	return s.writer.Close()
}
