package core

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	handler "github.com/nandanugg/plowtrack/module/core/internal/handler/http"
	"github.com/nandanugg/plowtrack/module/core/internal/handler/subscriber"
	"github.com/nandanugg/plowtrack/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/plowtrack/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/plowtrack/module/core/query"
	"github.com/nandanugg/plowtrack/module/core/service"
)

// Options configures the core module. TimeZone is applied to since values
// that carry no zone.
type Options struct {
	DefaultFleetLimit int
	TimeZone          *time.Location
	MQTTTopic         string
}

type Module struct {
	PlowSvc     *service.PlowService
	PositionSvc *service.PositionService
	handler     *handler.PlowHandler
	subscriber  *subscriber.PointSubscriber
	publisher   *rabbitmq.PositionPublisher
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	plowRepo := postgres.NewPlowRepo(db)

	positionPub, err := rabbitmq.NewPositionPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("position publisher: %w", err)
	}

	if opts.DefaultFleetLimit <= 0 {
		opts.DefaultFleetLimit = query.DefaultFleetLimit
	}
	plowSvc := service.NewPlowService(plowRepo, opts.DefaultFleetLimit)
	positionSvc := service.NewPositionService(positionPub)

	h := handler.NewPlowHandler(plowSvc, query.NewParser(opts.TimeZone, time.Now))
	sub := subscriber.NewPointSubscriber(mqttClient, opts.MQTTTopic, plowSvc, positionSvc)

	return &Module{
		PlowSvc:     plowSvc,
		PositionSvc: positionSvc,
		handler:     h,
		subscriber:  sub,
		publisher:   positionPub,
	}, nil
}

// Middleware returns the request logging and CORS handlers the API expects
// to run on every route, including unmatched preflight requests.
func Middleware(logger *slog.Logger) []gin.HandlerFunc {
	return []gin.HandlerFunc{handler.RequestLogger(logger), handler.CORS()}
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// Close unsubscribes from ingestion before closing the publisher channel.
func (m *Module) Close() error {
	return errors.Join(m.subscriber.Stop(), m.publisher.Close())
}
