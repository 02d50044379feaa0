package publisher

import (
	"context"

	"github.com/nandanugg/plowtrack/module/core/domain"
)

type PositionPublisher interface {
	PublishPosition(ctx context.Context, update *domain.PositionUpdate) error
}
