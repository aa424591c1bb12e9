// Package amqp publishes and consumes ledger events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"finassist/internal/core"
	applog "finassist/internal/log"
)

const publishTimeout = 5 * time.Second

// publisher is the part of *amqp091.Channel used to publish.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// acknowledger settles one delivery; amqp091.Delivery satisfies it.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// TransactionHandler processes one ledger event. A returned error requeues the message.
type TransactionHandler func(ctx context.Context, msg *TransactionRecordedMessage) error

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	pub          publisher
	exchangeName string
	queueName    string
	now          func() time.Time
	log          *applog.Logger
}

// NewClient dials url and declares a durable direct exchange with one bound queue.
func NewClient(url, exchangeName, queueName string, logger *applog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := newClient(channel, exchangeName, queueName, logger)
	client.conn = conn
	client.channel = channel

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func newClient(pub publisher, exchangeName, queueName string, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Client{
		pub:          pub,
		exchangeName: exchangeName,
		queueName:    queueName,
		now:          time.Now,
		log:          logger.WithComponent(applog.ComponentAMQP),
	}
}

// setup declares the durable exchange and queue and binds them on the event name.
func (c *Client) setup() error {
	const durable, autoDelete, internal, exclusive, noWait = true, false, false, false, false

	if err := c.channel.ExchangeDeclare(c.exchangeName, amqp091.ExchangeDirect, durable, autoDelete, internal, noWait, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchangeName, err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, durable, autoDelete, exclusive, noWait, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queueName, err)
	}
	if err := c.channel.QueueBind(c.queueName, EventTransactionRecorded, c.exchangeName, noWait, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.queueName, err)
	}
	return nil
}

// PublishTransactionRecorded announces an inserted transaction.
func (c *Client) PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error {
	msg := NewTransactionRecordedMessage(tx, c.now())
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.pub.PublishWithContext(ctx, c.exchangeName, EventTransactionRecorded, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.MessageID,
			Type:         EventTransactionRecorded,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.log.InfoContext(ctx, "Published transaction event",
		"message_id", msg.MessageID,
		applog.FieldTransactionID, tx.ID,
		"exchange", c.exchangeName)

	return nil
}

// ConsumeTransactionRecorded delivers ledger events to handler until ctx is done.
func (c *Client) ConsumeTransactionRecorded(ctx context.Context, handler TransactionHandler) error {
	// Deliveries are settled in handle, never auto-acked.
	const autoAck, exclusive, noLocal, noWait = false, false, false, false
	deliveries, err := c.channel.Consume(c.queueName, "", autoAck, exclusive, noLocal, noWait, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log.InfoContext(ctx, "Started consuming transaction events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.log.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, open := <-deliveries:
			if !open {
				return errors.New("amqp delivery channel closed")
			}
			c.handle(ctx, delivery.Body, delivery.Redelivered, delivery, handler)
		}
	}
}

// handle settles one delivery. Malformed bodies are dropped. A handler failure is
// requeued once; a delivery that already came back is dropped so a persistent failure
// cannot loop.
func (c *Client) handle(ctx context.Context, body []byte, redelivered bool, ack acknowledger, handler TransactionHandler) {
	msg, err := TransactionRecordedMessageFromJSON(body)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to unmarshal message", applog.FieldError, err)
		c.settle(ctx, ack.Nack(false, false), "nack", 0)
		return
	}

	if err := handler(ctx, msg); err != nil {
		requeue := !redelivered
		c.log.ErrorContext(ctx, "Failed to handle message",
			applog.FieldError, err,
			applog.FieldTransactionID, msg.TransactionID,
			"requeue", requeue)
		c.settle(ctx, ack.Nack(false, requeue), "nack", msg.TransactionID)
		return
	}

	c.settle(ctx, ack.Ack(false), "ack", msg.TransactionID)
	c.log.DebugContext(ctx, "Processed transaction event",
		"message_id", msg.MessageID,
		applog.FieldTransactionID, msg.TransactionID)
}

func (c *Client) settle(ctx context.Context, err error, how string, transactionID int64) {
	if err == nil {
		return
	}
	c.log.ErrorContext(ctx, "Failed to settle message",
		applog.FieldError, err,
		applog.FieldTransactionID, transactionID,
		"settle", how)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
