package ports

import (
	"context"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

// EventPublisher publishes session events to a message broker.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event *domain.SessionEvent) error
}

// PositionHandler receives one position update for a session.
type PositionHandler func(ctx context.Context, sessionID string, pos domain.Coordinate) error

// PositionSubscriber delivers a continuous position stream, one update at a time.
type PositionSubscriber interface {
	SubscribePositions(ctx context.Context, handler PositionHandler) error
}
