package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"docchat-relay/internal/model"
)

type channelOpener interface {
	Channel() (*amqp.Channel, error)
}

// UploadEventPublisher writes one persistent JSON message per accepted upload
// to a durable queue via the default exchange.
type UploadEventPublisher struct {
	conn      channelOpener
	queueName string
}

func NewUploadEventPublisher(conn *amqp.Connection, queueName string) *UploadEventPublisher {
	return &UploadEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *UploadEventPublisher) PublishUploadEvent(ctx context.Context, event model.UploadEvent) error {
	payload, err := encodeUploadEvent(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	if err := ch.PublishWithContext(ctx, "", p.queueName, false, false, payload); err != nil {
		return fmt.Errorf("publish upload event failed: %w", err)
	}
	return nil
}

func encodeUploadEvent(event model.UploadEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal upload event failed: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Type:          "docchat.upload",
		CorrelationId: event.RequestID,
		Timestamp:     event.UploadedAt,
		Body:          body,
	}, nil
}
