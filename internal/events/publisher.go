package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventPublisher publishes lifecycle events. Publish failures are logged
// by callers, never surfaced to the user: a paper transition must not fail
// because the broker is down.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *PaperEvent) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaEventPublisher connects a watermill Kafka publisher.
func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &watermillPublisher{publisher: publisher, logger: logger}, nil
}

// NewGoChannelEventPublisher is an in-process publisher for development
// and tests where no broker is available.
func NewGoChannelEventPublisher(logger *slog.Logger) EventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewSlogLogger(logger),
	)
	return &watermillPublisher{publisher: pubsub, logger: logger}
}

func (p *watermillPublisher) Publish(ctx context.Context, topic string, event *PaperEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("topic", topic)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("Event published", "topic", topic, "paper_id", event.PaperID)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// PublishedEvent pairs a topic with its payload for test inspection.
type PublishedEvent struct {
	Topic string
	Event *PaperEvent
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []PublishedEvent
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event *PaperEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything published so far.
func (m *MockEventPublisher) GetPublishedEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}
