package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName     = "shop.events"
	OrderPlacedKey   = "order.placed"
	orderPlacedQueue = "order.placed.q"
)

// OrderPlaced is the payload published after a checkout commits.
type OrderPlaced struct {
	OrderID       string `json:"orderId"`
	UserID        string `json:"userId"`
	CartID        string `json:"cartId"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"paymentMethod"`
	IsPaid        bool   `json:"isPaid"`
	CreatedAt     string `json:"createdAt"`
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

// RabbitPublisher publishes to a durable topic exchange.
type RabbitPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialRabbit connects and declares the exchange, queue and binding once.
func DialRabbit(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewRabbitPublisher(ch)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewRabbitPublisher(ch *amqp.Channel) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(orderPlacedQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, OrderPlacedKey, ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}
	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, msg OrderPlaced) error {
	pub, err := orderPlacedPublishing(msg)
	if err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx, ExchangeName, OrderPlacedKey, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// orderPlacedPublishing builds the persistent JSON message; the order id doubles as message id.
func orderPlacedPublishing(msg OrderPlaced) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderID,
		Body:         body,
	}, nil
}

func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
