// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultQueue = "poll-events"

// AMQPSink publishes events as JSON to a durable queue on the default
// exchange. amqp.Channel is not safe for concurrent publishing, hence the mutex.
type AMQPSink struct {
	mu    sync.Mutex
	ch    *amqp.Channel
	queue string
}

// Connect dials url, retrying a few times while the broker comes up.
func Connect(ctx context.Context, url string, attempts int, wait time.Duration) (*amqp.Connection, error) {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		var conn *amqp.Connection
		if conn, err = amqp.Dial(url); err == nil {
			slog.Info("connected to AMQP broker")
			return conn, nil
		}
		if i == attempts-1 {
			break
		}
		slog.Warn("failed to connect to AMQP broker, retrying", "error", err, "wait", wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("could not connect to AMQP broker after %d attempts: %w", attempts, err)
}

// NewAMQPSink opens a channel on conn and declares the durable queue.
func NewAMQPSink(conn *amqp.Connection, queue string) (*AMQPSink, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	return &AMQPSink{ch: ch, queue: queue}, nil
}

func (s *AMQPSink) Emit(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx,
		"",
		s.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Type:         ev.Kind,
			Timestamp:    ev.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Kind, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Close()
}
