package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geocoin/internal/adapters/nats"
	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/pkg/metrics"
)

// wsFrame is every message the server sends: the session view after an
// accepted fix, a relayed broker event, or an error.
type wsFrame struct {
	Type    string              `json:"type"` // "session" | "event" | "error"
	Session *domain.SessionView `json:"session,omitempty"`
	Event   json.RawMessage     `json:"event,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    string              `json:"code,omitempty"`
}

// wsPosition is one fix sent by the client.
type wsPosition struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// WebSocketHandler returns a handler for the continuous position stream of
// session :id. The session is opened on connect. Each client message
// {"lat":..,"lng":..} is applied in arrival order and answered with the
// updated view. With NATS configured, the session's events are relayed too.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Params("id")
		ctx := context.Background()
		log := slog.Default().With("session_id", id, "remote", c.RemoteAddr().String())
		log.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		view, err := deps.Game.Open(ctx, id)
		if err != nil {
			_ = writeJSON(wsError(err))
			return
		}
		if err := writeJSON(wsFrame{Type: "session", Session: view}); err != nil {
			return
		}

		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.SessionWildcard(id), func(msg *nats.Msg) {
				_ = writeJSON(wsFrame{Type: "event", Event: json.RawMessage(msg.Data)})
			})
			if err != nil {
				log.Warn("ws event relay unavailable", "error", err)
			} else {
				defer func() { _ = sub.Unsubscribe() }()
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var p wsPosition
			if err := json.Unmarshal(msg, &p); err != nil || p.Lat == nil || p.Lng == nil {
				_ = writeJSON(wsFrame{Type: "error", Error: "expected {\"lat\":number,\"lng\":number}", Code: "bad_request"})
				continue
			}

			view, err := deps.Game.UpdatePosition(ctx, id, domain.Coordinate{Lat: *p.Lat, Lng: *p.Lng}, "ws")
			if err != nil {
				_ = writeJSON(wsError(err))
				continue
			}
			if err := writeJSON(wsFrame{Type: "session", Session: view}); err != nil {
				break
			}
		}

		log.Info("ws client disconnected")
	}
}
