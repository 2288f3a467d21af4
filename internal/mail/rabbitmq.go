package mail

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/hirehub/apiserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitQueue is a mail queue backed by a RabbitMQ queue.
type RabbitQueue struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	queue           string
	queueDurable    bool
	queueAutoDelete bool
}

// NewRabbitQueue connects to RabbitMQ and prepares the mail queue.
func NewRabbitQueue(cfg config.RabbitMQConfig, queue string) (*RabbitQueue, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(queue) == "" {
		return nil, errors.New("mail queue name is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	q := &RabbitQueue{
		conn:            conn,
		channel:         ch,
		queue:           queue,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
	}
	if _, err := q.declareQueue(); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return q, nil
}

// Publish enqueues one outbound email.
func (r *RabbitQueue) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.channel.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Subscribe consumes queued email until ctx is cancelled.
func (r *RabbitQueue) Subscribe(ctx context.Context, handler Handler) error {
	deliveries, err := r.channel.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			var msg Message
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				// Undecodable payloads can never succeed; drop them.
				_ = delivery.Reject(false)
				continue
			}
			if err := handler(ctx, msg); err != nil {
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close closes the channel and connection.
func (r *RabbitQueue) Close() error {
	if err := r.channel.Close(); err != nil {
		_ = r.conn.Close()
		return err
	}
	return r.conn.Close()
}

func (r *RabbitQueue) declareQueue() (amqp.Queue, error) {
	return r.channel.QueueDeclare(r.queue, r.queueDurable, r.queueAutoDelete, false, false, nil)
}
