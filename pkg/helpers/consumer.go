package helpers

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ErrDrop marks a message that can never succeed; it is nacked without requeue.
var ErrDrop = errors.New("drop message")

// HandlerFunc processes one message body.
// Returning nil acks, an error wrapping ErrDrop drops, any other error requeues.
type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeQueue dials RabbitMQ, declares queue and dispatches deliveries to h
// until ctx is cancelled or the channel closes.
func ConsumeQueue(ctx context.Context, log *logrus.Logger, url, queue string, prefetch int, h HandlerFunc) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// fair dispatch between worker replicas
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return err
	}
	if err := DeclareQueue(ch, queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	LogInfo(log, "consumer listening", logrus.Fields{"queue": queue})
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			dispatch(ctx, log, queue, msg, h)
		}
	}
}

func dispatch(ctx context.Context, log *logrus.Logger, queue string, msg amqp.Delivery, h HandlerFunc) {
	err := h(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrDrop):
		LogError(log, "message dropped", err, logrus.Fields{"queue": queue})
		_ = msg.Nack(false, false)
	default:
		LogError(log, "message requeued", err, logrus.Fields{"queue": queue, "redelivered": msg.Redelivered})
		// one retry, then drop so a poison message cannot spin forever
		_ = msg.Nack(false, !msg.Redelivered)
	}
}
