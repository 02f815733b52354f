// Package service provides the outbound side of the application:
// publishing member activity to RabbitMQ. Errors are logged and returned
// so callers can ignore failures without interrupting the request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-review/internal/logging"
	"github.com/iliyamo/restaurant-review/internal/queue"
)

// Publisher sends activity events. Handlers depend on this interface.
type Publisher interface {
	PublishActivity(ctx context.Context, ev queue.ActivityEvent) error
}

// AMQPPublisher dials the broker per publish. Activity is low volume, so
// no connection is held open between events.
type AMQPPublisher struct {
	URL string
}

// PublishActivity publishes ev as a persistent JSON message to the
// activity queue. A missing At is filled with the current UTC time.
func (p AMQPPublisher) PublishActivity(ctx context.Context, ev queue.ActivityEvent) error {
	if ev.At == "" {
		ev.At = time.Now().UTC().Format(time.RFC3339)
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.ActivityQueue, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		logging.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.ActivityQueue, false, false, pub); err != nil {
		logging.Warn().Err(err).Str("kind", ev.Kind).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NopPublisher drops every event. It is used when no broker is
// configured and in tests.
type NopPublisher struct{}

func (NopPublisher) PublishActivity(context.Context, queue.ActivityEvent) error { return nil }
