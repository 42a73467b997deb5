// Package mailqueue decouples mail delivery from request handling. Services
// publish mail jobs to a durable RabbitMQ queue; a consumer started from main
// drains the queue and hands each job to a delivery callback. A failing
// broker surfaces as a typed upstream failure, never a hang: the AMQP client
// applies its own dial and heartbeat timeouts.
package mailqueue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/streadway/amqp"
)

const mailQueueName = "mail_queue"

// Message is one transactional mail job.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender is the mail collaborator consumed by the services.
type Sender interface {
	Send(to, subject, body string) error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// mail queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Dial:      amqp.DefaultDial(10 * time.Second),
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		mailQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", mailQueueName, err)
	}

	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during mailqueue client close: %v", errs)
	}
	return nil
}

// Send publishes a mail job to the queue. It satisfies Sender, so services
// depend on the interface and never on the broker directly.
func (c *Client) Send(to, subject, body string) error {
	if c.channel == nil {
		return fmt.Errorf("mailqueue channel is not available")
	}

	payload, err := json.Marshal(Message{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	err = c.channel.Publish(
		"",            // default exchange
		mailQueueName, // routing key: the queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish mail job: %w", err)
	}
	return nil
}

// ConsumeMailJobs drains the queue, handing each decoded job to deliver.
// A failed delivery is nacked back onto the queue; a malformed job is dropped
// after logging, since requeueing it can never succeed.
func (c *Client) ConsumeMailJobs(deliver func(Message) error) error {
	if c.channel == nil {
		return fmt.Errorf("mailqueue channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		mailQueueName,
		"",    // consumer tag
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register mail consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			var job Message
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				slog.Error("dropping malformed mail job", "error", err)
				_ = msg.Nack(false, false)
				continue
			}
			if err := deliver(job); err != nil {
				slog.Error("mail delivery failed, requeueing", "to", job.To, "error", err)
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	return nil
}
