package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"articlesearch/internal/model"
)

// MemoryPublisher sends memory records to the persist queue instead of
// writing them to MySQL directly.
type MemoryPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMemoryPublisher(conn *amqp.Connection, queueName string) *MemoryPublisher {
	return &MemoryPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *MemoryPublisher) Publish(ctx context.Context, record model.MemoryRecord) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal memory payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish memory record failed: %w", err)
	}
	return nil
}
