package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"couponmap.backend/internal/domain/entities"
)

// amqpChannel is the part of *amqp.Channel the notifier uses
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialChannel opens a connection and a channel on it. Closing the returned
// closer tears down both.
var dialChannel = func(url string) (amqpChannel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, func() error {
		_ = ch.Close()
		return conn.Close()
	}, nil
}

// RabbitKitchenNotifier publishes kitchen ticket events to a durable queue
type RabbitKitchenNotifier struct {
	url   string
	queue string

	mu      sync.Mutex
	ch      amqpChannel
	closeFn func() error
}

func NewRabbitKitchenNotifier(url, queue string) *RabbitKitchenNotifier {
	return &RabbitKitchenNotifier{url: url, queue: queue}
}

// Notify publishes a persistent JSON message. A failed publish drops the
// cached channel so the next call redials.
func (n *RabbitKitchenNotifier) Notify(ctx context.Context, event *entities.KitchenEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch, err := n.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		n.reset()
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

func (n *RabbitKitchenNotifier) channel() (amqpChannel, error) {
	if n.ch != nil {
		return n.ch, nil
	}
	ch, closeFn, err := dialChannel(n.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}
	n.ch, n.closeFn = ch, closeFn
	return ch, nil
}

func (n *RabbitKitchenNotifier) reset() {
	if n.closeFn != nil {
		_ = n.closeFn()
	}
	n.ch, n.closeFn = nil, nil
}

func (n *RabbitKitchenNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset()
	return nil
}
