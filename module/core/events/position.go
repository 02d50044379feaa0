// Package events holds the RabbitMQ topology and wire format shared by the
// position publisher and its consumers.
package events

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "plow.events"
	QueueName    = "plow_positions"
)

// PositionMessage is the body of a position update. Timestamp is RFC 3339 in UTC.
type PositionMessage struct {
	PlowID    string          `json:"plow_id"`
	Timestamp string          `json:"timestamp"`
	Coords    json.RawMessage `json:"coords"`
}

// Declare sets up the fanout exchange and the durable queue bound to it.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}
