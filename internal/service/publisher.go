// Package service provides the domain services used by the HTTP
// handlers: publishing events to RabbitMQ.  Publishing errors are logged
// and returned so callers can decide whether a failed publish should
// fail the request.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/camper-area-registration/internal/queue"
)

// Publisher publishes JSON events to durable queues on the default
// exchange.  A connection is opened per publish; event volume is one
// message per completed registration.
type Publisher struct {
	URL string
}

// NewPublisher returns a Publisher for the broker at url.  An empty url
// falls back to queue.BrokerURL().
func NewPublisher(url string) *Publisher {
	if url == "" {
		url = q.BrokerURL()
	}
	return &Publisher{URL: url}
}

// PublishRegistrationCompleted publishes ev to registration.completed.
func (p *Publisher) PublishRegistrationCompleted(ctx context.Context, ev q.RegistrationCompletedEvent) error {
	return p.publish(ctx, q.RegistrationCompletedQueue, ev)
}

// PublishContactMessage publishes ev to contact.message.
func (p *Publisher) PublishContactMessage(ctx context.Context, ev q.ContactMessageEvent) error {
	return p.publish(ctx, q.ContactMessageQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("rabbitmq: marshal %s event failed: %v", queue, err)
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare %s failed: %v", queue, err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queue, err)
		return err
	}
	return nil
}
