package service

import (
	"context"

	"github.com/nandanugg/plowtrack/module/core/domain"
	"github.com/nandanugg/plowtrack/module/core/internal/repository/database"
	"github.com/nandanugg/plowtrack/module/core/query"
)

type PlowService struct {
	repo              database.PlowRepository
	defaultFleetLimit int
}

func NewPlowService(repo database.PlowRepository, defaultFleetLimit int) *PlowService {
	return &PlowService{repo: repo, defaultFleetLimit: defaultFleetLimit}
}

// GetPlow returns one plow with its history reduced to c. A missing plow is
// reported as *domain.NotFoundError.
func (s *PlowService) GetPlow(ctx context.Context, id string, c query.Constraints) (*domain.Plow, error) {
	p, err := s.repo.GetPlow(ctx, id, c.HistoryScope())
	if err != nil {
		return nil, err
	}
	out := query.ApplyToPlow(*p, c)
	return &out, nil
}

func (s *PlowService) ListPlows(ctx context.Context, c query.Constraints) ([]domain.Plow, error) {
	plows, err := s.repo.ListPlowsByRecency(ctx, c.FleetScope(s.defaultFleetLimit), c.HistoryScope())
	if err != nil {
		return nil, err
	}
	return query.SelectFleet(plows, c, s.defaultFleetLimit), nil
}

func (s *PlowService) RecordPoint(ctx context.Context, plowID string, p domain.Point) error {
	return s.repo.AppendPoint(ctx, plowID, p)
}
