package events

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	orderExchange = "order_events"

	EventOrderCreated   = "order.created"
	EventPaymentSettled = "payment.settled"
	EventPaymentFailed  = "payment.failed"
)

// Publisher emits order lifecycle events. Publishing is best-effort: a broker
// failure is logged and never fails the request that triggered it.
type Publisher interface {
	PublishOrderEvent(orderID string, eventType string)
	Close()
}

// OrderEvent is the wire payload for order lifecycle messages.
type OrderEvent struct {
	OrderID   string    `json:"orderId"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type amqpPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  zerolog.Logger
}

// NewAMQP connects to the broker and declares the durable order-events
// exchange.
func NewAMQP(url string, logger zerolog.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		orderExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &amqpPublisher{
		conn:    conn,
		channel: ch,
		logger:  logger.With().Str("component", "events").Logger(),
	}, nil
}

func (p *amqpPublisher) PublishOrderEvent(orderID string, eventType string) {
	body, err := json.Marshal(OrderEvent{
		OrderID:   orderID,
		Type:      eventType,
		Timestamp: time.Now(),
	})
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Msg("marshal event")
		return
	}

	err = p.channel.Publish(
		orderExchange,
		eventType,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Str("event", eventType).Msg("publish failed")
		return
	}
	p.logger.Debug().Str("order_id", orderID).Str("event", eventType).Msg("event published")
}

func (p *amqpPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderEvent(string, string) {}
func (noopPublisher) Close()                           {}

// NewNoop returns a publisher that drops everything, used when AMQP_URL is
// not configured.
func NewNoop() Publisher { return noopPublisher{} }
