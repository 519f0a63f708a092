// Package events publishes item lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

// Actions carried in ItemMessage.Action.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionPublished   = "published"
	ActionUnpublished = "unpublished"
	ActionDeleted     = "deleted"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// RabbitMQ is a publishing.EventSink sending one persistent JSON message per
// lifecycle event.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

var _ publishing.EventSink = (*RabbitMQ)(nil)

// NewRabbitMQ connects to the broker and declares a durable direct exchange
// and a queue bound to it.
func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	publisher := NewPublisher(ch, cfg, logger)
	publisher.conn = conn
	return publisher, nil
}

// NewPublisher creates a sink on an already opened channel.
func NewPublisher(ch Channel, cfg Config, logger *slog.Logger) *RabbitMQ {
	if logger == nil {
		logger = slog.Default()
	}
	return &RabbitMQ{
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}
}

func declare(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if cfg.QueueName == "" {
		return nil
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ItemMessage is the JSON body of every published message.
type ItemMessage struct {
	Action    string           `json:"action"`
	Kind      publishing.Kind  `json:"kind"`
	ItemID    string           `json:"item_id"`
	Item      *publishing.Item `json:"item"`
	Timestamp time.Time        `json:"timestamp"`
}

func (r *RabbitMQ) ItemCreated(ctx context.Context, item *publishing.Item) error {
	return r.publish(ctx, ActionCreated, item)
}

func (r *RabbitMQ) ItemUpdated(ctx context.Context, item *publishing.Item) error {
	return r.publish(ctx, ActionUpdated, item)
}

func (r *RabbitMQ) ItemPublished(ctx context.Context, item *publishing.Item) error {
	return r.publish(ctx, ActionPublished, item)
}

func (r *RabbitMQ) ItemUnpublished(ctx context.Context, item *publishing.Item) error {
	return r.publish(ctx, ActionUnpublished, item)
}

func (r *RabbitMQ) ItemDeleted(ctx context.Context, item *publishing.Item) error {
	return r.publish(ctx, ActionDeleted, item)
}

func (r *RabbitMQ) publish(ctx context.Context, action string, item *publishing.Item) error {
	msg := ItemMessage{
		Action:    action,
		Kind:      item.Kind,
		ItemID:    item.ID.String(),
		Item:      item,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         string(item.Kind) + "." + action,
			MessageId:    item.ID.String(),
			Body:         body,
			Timestamp:    msg.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published item event",
		"id", item.ID,
		"kind", item.Kind,
		"action", action,
	)
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
