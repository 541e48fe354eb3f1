package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends change events to ExchangeName.  A connection is dialed
// per publish; writes are rare compared to reads.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish sends ev.  Errors are logged and returned so the caller can
// choose to ignore them without interrupting the request.
func (p *Publisher) Publish(ctx context.Context, ev ChangeEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch); err != nil {
		p.log.Warn("rabbitmq: exchange declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		MessageId:    ev.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, ExchangeName, ev.Table, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("event_id", ev.ID))
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// declareExchange is idempotent; both sides call it so start order does
// not matter.
func declareExchange(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeName, // name
		"fanout",     // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	return nil
}
