package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
)

// Operations carried by change notifications.
const (
	OperationCreated  = "created"
	OperationReplaced = "replaced"
	OperationDeleted  = "deleted"
)

// ChangeNotification announces that a record of a resource changed.
type ChangeNotification struct {
	Resource    string    `json:"resource"`
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	PublishedAt time.Time `json:"published"`
}

// Notifier publishes change notifications.
type Notifier interface {
	Notify(ctx context.Context, event ChangeNotification) error
	Close()
}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

var _ Notifier = (*EventPublisher)(nil)

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	return &EventPublisher{
		client:   client,
		producer: producer,
	}, nil
}

// Notify publishes an event keyed by resource so a resource's changes stay ordered.
func (p *EventPublisher) Notify(ctx context.Context, event ChangeNotification) error {
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not serialize change notification: %w", err)
	}

	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     event.Resource,
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send change notification to Pulsar: %w", err)
	}
	return nil
}

// Close closes the Pulsar client and producer.
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
}

// Discard drops every notification. It stands in when no broker is configured.
type Discard struct{}

var _ Notifier = Discard{}

func (Discard) Notify(context.Context, ChangeNotification) error { return nil }

func (Discard) Close() {}

// Decode parses a change notification payload.
func Decode(payload []byte) (ChangeNotification, error) {
	var event ChangeNotification
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("could not decode change notification: %w", err)
	}
	if event.Resource == "" {
		return event, fmt.Errorf("change notification has no resource")
	}
	return event, nil
}
