package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geocoin/internal/core/usecases"
)

// Pinger is implemented by backing stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Game *usecases.GameService
	// NATS is optional. When set, WebSocket clients also receive the
	// session events published on the broker.
	NATS *nats.Conn
	// Store is the trail store, checked by /v1/ready.
	Store       Pinger
	StoreDriver string
	// RateLimit is the per-IP request budget per minute; 0 uses the default.
	RateLimit int
}
