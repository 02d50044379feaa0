package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

const DefaultTopic = "/fleet/plow/+/point"

type plowService interface {
	RecordPoint(ctx context.Context, plowID string, p domain.Point) error
}

type positionService interface {
	Announce(ctx context.Context, plowID string, p domain.Point) error
}

type pointMessage struct {
	PlowID    string          `json:"plow_id"`
	Timestamp int64           `json:"timestamp"`
	Coords    json.RawMessage `json:"coords"`
	Events    json.RawMessage `json:"events,omitempty"`
}

type PointSubscriber struct {
	client      mqtt.Client
	topic       string
	plowSvc     plowService
	positionSvc positionService
}

func NewPointSubscriber(client mqtt.Client, topic string, plowSvc plowService, positionSvc positionService) *PointSubscriber {
	if topic == "" {
		topic = DefaultTopic
	}
	return &PointSubscriber{
		client:      client,
		topic:       topic,
		plowSvc:     plowSvc,
		positionSvc: positionSvc,
	}
}

func (s *PointSubscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *PointSubscriber) Stop() error {
	token := s.client.Unsubscribe(s.topic)
	token.Wait()
	return token.Error()
}

func (s *PointSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw pointMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		slog.Warn("invalid point message", "error", err, "topic", msg.Topic())
		return
	}

	if raw.PlowID == "" {
		raw.PlowID = plowIDFromTopic(msg.Topic())
	}
	if err := validatePointMessage(&raw, msg.Topic()); err != nil {
		slog.Warn("point validation failed", "error", err, "topic", msg.Topic())
		return
	}

	p := domain.Point{
		Timestamp: time.Unix(raw.Timestamp, 0).UTC(),
		Coords:    raw.Coords,
		Events:    raw.Events,
	}

	ctx := context.Background()

	if err := s.plowSvc.RecordPoint(ctx, raw.PlowID, p); err != nil {
		slog.Error("record point failed", "error", err, "plow_id", raw.PlowID)
		return
	}

	if err := s.positionSvc.Announce(ctx, raw.PlowID, p); err != nil {
		slog.Warn("announce position failed", "error", err, "plow_id", raw.PlowID)
	}
}

// plowIDFromTopic extracts the id from topics shaped like /fleet/plow/<id>/point.
func plowIDFromTopic(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) != 4 || parts[1] != "plow" {
		return ""
	}
	return parts[2]
}

func validatePointMessage(msg *pointMessage, topic string) error {
	if msg.PlowID == "" {
		return fmt.Errorf("plow_id: required")
	}
	if id := plowIDFromTopic(topic); id != "" && id != msg.PlowID {
		return fmt.Errorf("plow_id: %q does not match topic %q", msg.PlowID, topic)
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	if len(msg.Coords) == 0 || string(msg.Coords) == "null" {
		return fmt.Errorf("coords: required")
	}
	return nil
}
