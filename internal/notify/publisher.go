// Package notify publishes event lifecycle changes to an AMQP topic
// exchange so downstream consumers (mailers, dashboards) can react.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/campus-coordinator/internal/application"
)

const (
	exchangeName = "campus.events"
	exchangeKind = "topic"
)

// Publisher sends lifecycle notifications over AMQP. It implements
// application.Notifier.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// NewPublisher dials the broker and declares the lifecycle exchange.
func NewPublisher(url string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchangeName, exchangeKind, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, channel: channel, logger: logger}, nil
}

type eventChangeMessage struct {
	Kind        string    `json:"kind"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	RequesterID string    `json:"requester_id"`
	Department  string    `json:"department"`
	School      string    `json:"school"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NotifyEventChange publishes one lifecycle change keyed as event.<kind>.
func (p *Publisher) NotifyEventChange(ctx context.Context, kind string, event application.Event) error {
	if p == nil || p.channel == nil {
		return nil
	}

	message := eventChangeMessage{
		Kind:        kind,
		EventID:     event.ID,
		Title:       event.Title,
		Status:      string(event.Status),
		RequesterID: event.RequesterID,
		Department:  event.Department,
		School:      event.School,
		Start:       event.Start,
		End:         event.End,
		OccurredAt:  event.UpdatedAt,
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal event change: %w", err)
	}

	routingKey := "event." + kind
	err = p.channel.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event change: %w", err)
	}

	p.logger.DebugContext(ctx, "published event change",
		"exchange", exchangeName,
		"routing_key", routingKey,
		"event_id", event.ID,
	)
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
