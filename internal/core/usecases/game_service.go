package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/core/ports"
	"github.com/samirrijal/geocoin/internal/pkg/metrics"
	"github.com/samirrijal/geocoin/internal/pkg/telemetry"
)

// MaxSessionIDLength bounds caller-chosen session ids.
const MaxSessionIDLength = 128

// GameService hosts the open sessions and serializes every operation on a
// single session.
type GameService struct {
	rules     domain.Rules
	store     ports.KeyValueStore
	publisher ports.EventPublisher
	tracer    trace.Tracer
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionSlot
}

type sessionSlot struct {
	mu      sync.Mutex
	session *Session
}

// NewGameService creates a GameService. publisher may be nil.
func NewGameService(rules domain.Rules, store ports.KeyValueStore, publisher ports.EventPublisher) *GameService {
	return &GameService{
		rules:     rules,
		store:     store,
		publisher: publisher,
		tracer:    otel.Tracer(telemetry.TracerName),
		now:       time.Now,
		sessions:  make(map[string]*sessionSlot),
	}
}

// Rules returns the world rules every session is built with.
func (g *GameService) Rules() domain.Rules { return g.rules }

// SessionCount returns the number of open sessions.
func (g *GameService) SessionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// Open returns the session id, creating it (and resuming any persisted
// trail) when it is not open yet. An empty id allocates a fresh one.
func (g *GameService) Open(ctx context.Context, id string) (*domain.SessionView, error) {
	ctx, span := g.tracer.Start(ctx, telemetry.SpanOpen)
	defer span.End()

	if id == "" {
		id = uuid.NewString()
	}
	if len(id) > MaxSessionIDLength {
		err := fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidSessionID, MaxSessionIDLength)
		fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", id))

	slot := g.lockSlot(id)
	defer slot.mu.Unlock()

	if slot.session != nil {
		return slot.session.View(), nil
	}

	s, err := NewSession(ctx, id, g.rules, g.store)
	if err != nil {
		g.mu.Lock()
		if g.sessions[id] == slot {
			delete(g.sessions, id)
		}
		g.mu.Unlock()
		fail(span, err)
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	slot.session = s
	metrics.ActiveSessions.Inc()
	slog.InfoContext(ctx, "session opened", "session_id", id, "trail_points", len(s.trail))
	return s.View(), nil
}

// lockSlot returns the locked slot registered for id, creating it when
// absent. A slot dropped from the map while we waited for its lock (a
// failed open or a close) is abandoned and the lookup retried.
func (g *GameService) lockSlot(id string) *sessionSlot {
	for {
		g.mu.Lock()
		slot, ok := g.sessions[id]
		if !ok {
			slot = &sessionSlot{}
			g.sessions[id] = slot
		}
		g.mu.Unlock()

		slot.mu.Lock()
		g.mu.Lock()
		current := g.sessions[id] == slot
		g.mu.Unlock()
		if current {
			return slot
		}
		slot.mu.Unlock()
	}
}

// View returns the read model of session id.
func (g *GameService) View(ctx context.Context, id string) (*domain.SessionView, error) {
	var view *domain.SessionView
	err := g.with(id, func(s *Session) error {
		view = s.View()
		return nil
	})
	return view, err
}

// Trail returns the movement trail of session id.
func (g *GameService) Trail(ctx context.Context, id string) ([]domain.Coordinate, error) {
	var trail []domain.Coordinate
	err := g.with(id, func(s *Session) error {
		trail = s.Trail()
		return nil
	})
	return trail, err
}

// Move steps the player of session id one cell towards direction.
func (g *GameService) Move(ctx context.Context, id, direction string) (*domain.SessionView, error) {
	ctx, span := g.start(ctx, telemetry.SpanMove, id)
	defer span.End()

	d, err := domain.ParseDirection(direction)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	var view *domain.SessionView
	err = g.with(id, func(s *Session) error {
		diff, err := s.Move(ctx, d)
		if err != nil {
			return err
		}
		g.publishMove(ctx, s, diff)
		view = s.View()
		return nil
	})
	if err != nil {
		fail(span, err)
	}
	return view, err
}

// UpdatePosition moves the player of session id to pos. source labels
// where the fix came from (http, ws, nats) for rejection metrics.
func (g *GameService) UpdatePosition(ctx context.Context, id string, pos domain.Coordinate, source string) (*domain.SessionView, error) {
	ctx, span := g.start(ctx, telemetry.SpanPosition, id)
	defer span.End()
	span.SetAttributes(attribute.String("position.source", source))

	if !pos.Valid() {
		metrics.PositionsRejected.WithLabelValues(source).Inc()
		err := fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinate, pos.Lat, pos.Lng)
		fail(span, err)
		return nil, err
	}

	var view *domain.SessionView
	err := g.with(id, func(s *Session) error {
		diff, err := s.UpdatePosition(ctx, pos)
		if err != nil {
			return err
		}
		g.publishMove(ctx, s, diff)
		view = s.View()
		return nil
	})
	if err != nil {
		fail(span, err)
	}
	return view, err
}

// Take moves coin serial out of the live cache at cellKey. A non-empty
// originKey selects a deposited coin minted elsewhere.
func (g *GameService) Take(ctx context.Context, id, cellKey string, serial int, originKey string) (*domain.Coin, *domain.SessionView, error) {
	ctx, span := g.start(ctx, telemetry.SpanTake, id)
	defer span.End()

	cell, origin, err := parseTakeTarget(cellKey, originKey)
	if err != nil {
		fail(span, err)
		return nil, nil, err
	}
	span.SetAttributes(attribute.String("cell", cellKey), attribute.Int("coin.serial", serial))

	var (
		coin domain.Coin
		view *domain.SessionView
	)
	err = g.with(id, func(s *Session) error {
		c, err := s.Take(cell, serial, origin)
		if err != nil {
			return err
		}
		coin = c
		g.publish(ctx, &domain.SessionEvent{SessionID: id, Kind: domain.EventCoinTaken, Cell: &cell, Coin: &c})
		view = s.View()
		return nil
	})
	if err != nil {
		fail(span, err)
		return nil, nil, err
	}
	return &coin, view, nil
}

// Deposit moves the most recently taken coin into the live cache at
// cellKey. The returned coin is nil when the inventory was empty.
func (g *GameService) Deposit(ctx context.Context, id, cellKey string) (*domain.Coin, *domain.SessionView, error) {
	ctx, span := g.start(ctx, telemetry.SpanDeposit, id)
	defer span.End()

	cell, err := domain.ParseCellKey(cellKey)
	if err != nil {
		fail(span, err)
		return nil, nil, err
	}

	var (
		coin *domain.Coin
		view *domain.SessionView
	)
	err = g.with(id, func(s *Session) error {
		c, err := s.Deposit(cell)
		if err != nil {
			return err
		}
		coin = c
		if c != nil {
			g.publish(ctx, &domain.SessionEvent{SessionID: id, Kind: domain.EventCoinDeposited, Cell: &cell, Coin: c})
		}
		view = s.View()
		return nil
	})
	if err != nil {
		fail(span, err)
		return nil, nil, err
	}
	return coin, view, nil
}

// Reset returns session id to its initial state.
func (g *GameService) Reset(ctx context.Context, id string) (*domain.SessionView, error) {
	ctx, span := g.start(ctx, telemetry.SpanReset, id)
	defer span.End()

	var view *domain.SessionView
	err := g.with(id, func(s *Session) error {
		if _, err := s.Reset(ctx); err != nil {
			return err
		}
		pos := s.Position()
		g.publish(ctx, &domain.SessionEvent{SessionID: id, Kind: domain.EventReset, Player: &pos})
		view = s.View()
		return nil
	})
	if err != nil {
		fail(span, err)
	}
	return view, err
}

// Close drops session id from memory. Its persisted trail is kept.
func (g *GameService) Close(ctx context.Context, id string) error {
	g.mu.Lock()
	slot, ok := g.sessions[id]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sessions[id] != slot || slot.session == nil {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	delete(g.sessions, id)
	slot.session = nil
	metrics.ActiveSessions.Dec()
	return nil
}

func (g *GameService) with(id string, fn func(s *Session) error) error {
	g.mu.Lock()
	slot, ok := g.sessions[id]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.session == nil {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return fn(slot.session)
}

func (g *GameService) start(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("session.id", id)))
}

func (g *GameService) publishMove(ctx context.Context, s *Session, diff domain.RegionDiff) {
	pos := s.Position()
	cell := s.PlayerCell()
	g.publish(ctx, &domain.SessionEvent{SessionID: s.ID(), Kind: domain.EventMoved, Player: &pos, Cell: &cell})
	if diff.Changed() {
		g.publish(ctx, &domain.SessionEvent{
			SessionID: s.ID(),
			Kind:      domain.EventRegionChanged,
			Entered:   len(diff.Entered),
			Restored:  len(diff.Restored),
			Exited:    len(diff.Exited),
		})
	}
}

// publish is best effort: a broker outage must not fail a game action.
func (g *GameService) publish(ctx context.Context, ev *domain.SessionEvent) {
	if g.publisher == nil {
		return
	}
	ev.Time = g.now()
	if err := g.publisher.PublishSessionEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish session event failed",
			"session_id", ev.SessionID, "kind", ev.Kind, "error", err)
	}
}

func parseTakeTarget(cellKey, originKey string) (domain.GridCell, *domain.GridCell, error) {
	cell, err := domain.ParseCellKey(cellKey)
	if err != nil {
		return domain.GridCell{}, nil, err
	}
	if originKey == "" {
		return cell, nil, nil
	}
	origin, err := domain.ParseCellKey(originKey)
	if err != nil {
		return domain.GridCell{}, nil, err
	}
	return cell, &origin, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
