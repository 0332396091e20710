package port

import (
	"context"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

// EventPublisher delivers post-commit notifications. Publishing is
// fire-and-forget: a failed or dropped event never affects the order that
// produced it.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent)
}
