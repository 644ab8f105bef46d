package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog"
)

// HandlerFunc processes one change notification.
type HandlerFunc func(ctx context.Context, event ChangeNotification) error

type EventConsumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
}

// NewEventConsumer subscribes to the change notification topic. Messages that
// fail three times are moved to the topic's dead letter queue.
func NewEventConsumer(pulsarURL, topic, subscription string) (*EventConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.Shared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   3,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	return &EventConsumer{client: client, consumer: consumer}, nil
}

// Run receives messages until ctx is cancelled. Malformed payloads are acked
// and dropped, handler failures are nacked for redelivery.
func (c *EventConsumer) Run(ctx context.Context, handle HandlerFunc) error {
	logger := zerolog.Ctx(ctx)

	for {
		msg, err := c.consumer.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			logger.Error().Err(err).Msg("Error receiving message")
			continue
		}

		event, err := Decode(msg.Payload())
		if err != nil {
			logger.Warn().Err(err).Str("message_id", msg.ID().String()).Msg("Dropping malformed change notification")
			c.consumer.Ack(msg)
			continue
		}

		if err := handle(ctx, event); err != nil {
			logger.Error().Err(err).Str("resource", event.Resource).Str("id", event.ID).Msg("Failed to process change notification")
			c.consumer.Nack(msg)
			continue
		}

		c.consumer.Ack(msg)
	}
}

// Close cleans up the Pulsar consumer and client.
func (c *EventConsumer) Close() {
	c.consumer.Close()
	c.client.Close()
}
