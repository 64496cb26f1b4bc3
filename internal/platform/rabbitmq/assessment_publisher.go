package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"path2prevention/internal/model"
)

type AssessmentPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAssessmentPublisher(conn *amqp.Connection, queueName string) *AssessmentPublisher {
	return &AssessmentPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AssessmentPublisher) Publish(ctx context.Context, result model.AssessmentResult) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, p.queueName); err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal assessment payload failed: %w", err)
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
		return fmt.Errorf("publish assessment failed: %w", err)
	}
	return nil
}
