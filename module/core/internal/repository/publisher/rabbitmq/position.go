package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/plowtrack/module/core/domain"
	"github.com/nandanugg/plowtrack/module/core/events"
	"github.com/nandanugg/plowtrack/module/core/internal/repository/publisher"
)

var _ publisher.PositionPublisher = (*PositionPublisher)(nil)

type PositionPublisher struct {
	ch *amqp.Channel
}

func NewPositionPublisher(conn *amqp.Connection) (*PositionPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := events.Declare(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &PositionPublisher{ch: ch}, nil
}

func (p *PositionPublisher) PublishPosition(ctx context.Context, update *domain.PositionUpdate) error {
	body, err := encodePosition(update)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, events.ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   update.Timestamp,
		Body:        body,
	})
}

func (p *PositionPublisher) Close() error {
	return p.ch.Close()
}

func encodePosition(update *domain.PositionUpdate) ([]byte, error) {
	coords := update.Coords
	if len(coords) == 0 {
		coords = json.RawMessage("null")
	}
	body, err := json.Marshal(events.PositionMessage{
		PlowID:    update.PlowID,
		Timestamp: update.Timestamp.UTC().Format(time.RFC3339Nano),
		Coords:    coords,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal position: %w", err)
	}
	return body, nil
}
