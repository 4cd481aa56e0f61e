package activity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSink publishes activity events as JSON messages to an AMQP queue,
// letting external consumers ship the audit trail elsewhere. It is an
// optional addition to the mandatory file sink.
type AMQPSink struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewAMQPSink dials the broker and declares the queue.
func NewAMQPSink(url, queue string) (*AMQPSink, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is required")
	}
	if strings.TrimSpace(queue) == "" {
		return nil, errors.New("amqp queue is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPSink{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

func (s *AMQPSink) Write(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.channel.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.At,
		Body:        body,
	})
}

func (s *AMQPSink) Close() error {
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
