package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/core/ports"
)

// Subscriber implements ports.PositionSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribePositions delivers every fix on geocoin.position.<id> to handler.
// Fixes the handler rejects are Nak'd.
func (s *Subscriber) SubscribePositions(ctx context.Context, handler ports.PositionHandler) error {
	sub, err := s.js.Subscribe(positionPrefix+">", func(msg *nats.Msg) {
		id, ok := sessionFromPositionSubject(msg.Subject)
		if !ok {
			_ = msg.Term()
			return
		}
		var pos domain.Coordinate
		if err := json.Unmarshal(msg.Data, &pos); err != nil {
			slog.Warn("position fix undecodable", "subject", msg.Subject, "error", err)
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, id, pos); err != nil {
			slog.Warn("position fix rejected", "session_id", id, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("position-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
