package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docchat-relay/internal/model"
)

// UploadEventHandler processes one decoded event. A returned error nacks the
// delivery without requeueing it.
type UploadEventHandler func(ctx context.Context, event model.UploadEvent) error

// UploadEventConsumer reads upload events published by the relay.
type UploadEventConsumer struct {
	conn      *amqp.Connection
	queueName string
	handle    UploadEventHandler
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func NewUploadEventConsumer(conn *amqp.Connection, queueName string, handle UploadEventHandler, logger *slog.Logger) *UploadEventConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadEventConsumer{
		conn:      conn,
		queueName: queueName,
		handle:    handle,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

func (w *UploadEventConsumer) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare consumer queue failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set consumer qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(w.done)
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.process(workerCtx, d)
			}
		}
	}()

	return nil
}

// Done is closed when the consumer stops, including when the broker drops the channel.
func (w *UploadEventConsumer) Done() <-chan struct{} {
	return w.done
}

func (w *UploadEventConsumer) process(ctx context.Context, d amqp.Delivery) {
	var event model.UploadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.logger.Warn("decode upload event failed", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.handle(ctx, event); err != nil {
		w.logger.Warn("handle upload event failed", "error", err, "filename", event.Filename)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *UploadEventConsumer) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
