// Package service provides the RabbitMQ publisher for submission events.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ikrrevents/eventsite/internal/queue"
)

// Publisher sends SubmissionEvents to queue.SubmissionsQueue.  A Publisher
// with an empty URL is disabled and Publish is a no-op.
type Publisher struct {
	url string
	log *slog.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{url: url, log: log}
}

// Enabled reports whether a broker URL is configured.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// Publish delivers one event as a persistent message through the default
// exchange.  Each call opens its own connection; submissions are rare
// enough that a long-lived channel is not needed.
func (p *Publisher) Publish(ctx context.Context, ev queue.SubmissionEvent) error {
	if !p.Enabled() {
		return nil
	}
	conn, err := queue.Dial(ctx, p.url)
	if err != nil {
		p.log.Warn("rabbitmq_dial_failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq_channel_failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.SubmissionsQueue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq_declare_failed", "error", err)
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
		Type:         ev.Kind,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.SubmissionsQueue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq_publish_failed", "error", err, "kind", ev.Kind, "ref", ev.ReferenceID)
		return err
	}
	return nil
}
