package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueSender publishes messages to a durable queue for the mailer worker.
type QueueSender struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

func NewQueueSender(url, queue string, log *zap.Logger) (*QueueSender, error) {
	conn, ch, err := openQueue(url, queue)
	if err != nil {
		return nil, err
	}

	return &QueueSender{
		conn:    conn,
		channel: ch,
		queue:   queue,
		log:     log.With(zap.String("mail", TransportAMQP), zap.String("queue", queue)),
	}, nil
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail message: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		s.log.Error("Failed to queue email", zap.Error(err), zap.String("to", msg.To))
		return fmt.Errorf("queue email to %s: %w", msg.To, err)
	}

	s.log.Debug("Email queued", zap.String("to", msg.To))
	return nil
}

func (s *QueueSender) Close() error {
	_ = s.channel.Close()
	return s.conn.Close()
}

// Consumer drains the mail queue into a Sender, usually an SMTPSender.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	next    Sender
	log     *zap.Logger
}

func NewConsumer(url, queue string, next Sender, log *zap.Logger) (*Consumer, error) {
	conn, ch, err := openQueue(url, queue)
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("set prefetch: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   queue,
		next:    next,
		log:     log.With(zap.String("worker", "mailer"), zap.String("queue", queue)),
	}, nil
}

// Run blocks until ctx is cancelled or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "arc-web-mailer", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Info("Mailer consuming")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		c.log.Error("Dropping malformed mail message", zap.Error(err))
		_ = d.Reject(false)
		return
	}

	if err := c.next.Send(ctx, msg); err != nil {
		c.log.Warn("Mail delivery failed, requeueing", zap.Error(err), zap.String("to", msg.To))
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	_ = c.channel.Close()
	return c.conn.Close()
}

func openQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return conn, ch, nil
}
