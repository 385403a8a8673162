package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher is what the services depend on.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Topic every borrowing event is published to.
const BorrowingTopic = "library.borrowing"

// watermillPublisher adapts a watermill message.Publisher to EventPublisher.
type watermillPublisher struct {
	publisher message.Publisher
}

// NewGoChannelPublisher returns an in-process publisher for development and
// tests without a broker.
func NewGoChannelPublisher(logger watermill.LoggerAdapter) EventPublisher {
	pub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	return &watermillPublisher{publisher: pub}
}

// NewKafkaPublisher returns a Kafka-backed publisher.
func NewKafkaPublisher(brokers []string, logger watermill.LoggerAdapter) (EventPublisher, error) {
	pub, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &watermillPublisher{publisher: pub}, nil
}

func (p *watermillPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	return p.publisher.Publish(BorrowingTopic, msg)
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
