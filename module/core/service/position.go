package service

import (
	"context"

	"github.com/nandanugg/plowtrack/module/core/domain"
	"github.com/nandanugg/plowtrack/module/core/internal/repository/publisher"
)

type PositionService struct {
	publisher publisher.PositionPublisher
}

func NewPositionService(pub publisher.PositionPublisher) *PositionService {
	return &PositionService{publisher: pub}
}

// Announce tells downstream consumers that a plow reported a new point.
func (s *PositionService) Announce(ctx context.Context, plowID string, p domain.Point) error {
	return s.publisher.PublishPosition(ctx, &domain.PositionUpdate{
		PlowID:    plowID,
		Timestamp: p.Timestamp,
		Coords:    p.Coords,
	})
}
