// Package pubsub publishes outcome records to a Google Cloud Pub/Sub topic.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// Sink publishes each outcome as one JSON message.
type Sink struct {
	topic topicPublisher
}

// New creates a Sink for the provided topic.
func New(topic *pubsub.Topic) *Sink {
	return &Sink{topic: topic}
}

// Write marshals the outcome and blocks until the publish is acknowledged.
func (s *Sink) Write(ctx context.Context, outcome crawler.Outcome) error {
	if s.topic == nil {
		return fmt.Errorf("pubsub topic is not configured")
	}
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	msg := &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"url": outcome.URL},
	}
	if _, err := s.topic.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish outcome %s: %w", outcome.URL, err)
	}
	return nil
}
