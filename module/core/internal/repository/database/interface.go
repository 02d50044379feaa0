package database

import (
	"context"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

// PlowRepository returns point histories oldest first. Both scopes are fetch
// hints; callers must stay correct if more comes back than asked for.
type PlowRepository interface {
	GetPlow(ctx context.Context, id string, scope domain.HistoryScope) (*domain.Plow, error)
	ListPlowsByRecency(ctx context.Context, fleet domain.FleetScope, scope domain.HistoryScope) ([]domain.Plow, error)
	AppendPoint(ctx context.Context, plowID string, p domain.Point) error
}
