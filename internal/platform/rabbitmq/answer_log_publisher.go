package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"sro-assistant/internal/model"
)

// AnswerLogPublisher enqueues answered questions for async persistence.
type AnswerLogPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAnswerLogPublisher(conn *amqp.Connection, queueName string) *AnswerLogPublisher {
	return &AnswerLogPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AnswerLogPublisher) Publish(ctx context.Context, entry model.AnswerLog) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal answer log failed: %w", err)
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
		return fmt.Errorf("publish answer log failed: %w", err)
	}
	return nil
}
