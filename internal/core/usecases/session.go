package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/core/ports"
	"github.com/samirrijal/geocoin/internal/pkg/geospatial"
	"github.com/samirrijal/geocoin/internal/pkg/metrics"
)

// TrailKey is the store key holding a session's movement trail.
func TrailKey(sessionID string) string {
	return "geocoin:" + sessionID + ":trail"
}

// Session owns one player's game state: position, trail, inventory and
// the active/saved cache directory. It is not safe for concurrent use.
type Session struct {
	id        string
	rules     domain.Rules
	grid      *domain.Grid
	dir       *domain.Directory
	inventory domain.Inventory
	position  domain.Coordinate
	trail     []domain.Coordinate
	minted    int
	store     ports.KeyValueStore
	log       *slog.Logger
}

// NewSession opens session id. A persisted trail is resumed from its last
// point; otherwise the player starts at rules.Start.
func NewSession(ctx context.Context, id string, rules domain.Rules, store ports.KeyValueStore) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:       id,
		rules:    rules,
		grid:     domain.NewGrid(rules.CellSize),
		dir:      domain.NewDirectory(),
		position: rules.Start,
		store:    store,
		log:      slog.Default().With("session_id", id),
	}

	trail, err := s.loadTrail(ctx)
	if err != nil {
		return nil, err
	}
	s.trail = trail
	if n := len(trail); n > 0 {
		s.position = trail[n-1]
	}

	s.Recompute()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Position returns the player's current coordinate.
func (s *Session) Position() domain.Coordinate { return s.position }

// PlayerCell returns the cell the player stands in.
func (s *Session) PlayerCell() domain.GridCell { return s.grid.CellOf(s.position) }

// Cache returns the live cache at cell.
func (s *Session) Cache(cell domain.GridCell) (*domain.Cache, bool) { return s.dir.Active(cell) }

// ActiveCaches returns the live caches ordered by cell.
func (s *Session) ActiveCaches() []*domain.Cache { return s.dir.ActiveCaches() }

// SavedRecords returns a copy of the dormant cache records.
func (s *Session) SavedRecords() map[domain.GridCell]string { return s.dir.SavedRecords() }

// Inventory returns the held coins, oldest first.
func (s *Session) Inventory() []domain.Coin { return s.inventory.Coins() }

// Minted returns how many coins have been minted since the session (or
// the last reset) began.
func (s *Session) Minted() int { return s.minted }

// Trail returns a copy of the movement trail.
func (s *Session) Trail() []domain.Coordinate {
	out := make([]domain.Coordinate, len(s.trail))
	copy(out, s.trail)
	return out
}

// Recompute rebuilds the active region around the player's cell.
// Caches that stay inside keep their identity; luck is consulted only for
// cells not already active; caches that leave are saved as mementos.
func (s *Session) Recompute() domain.RegionDiff {
	start := time.Now()
	defer func() { metrics.RecomputeDuration.Observe(time.Since(start).Seconds()) }()

	center := s.grid.CellOf(s.position)
	r := s.rules.Radius

	var diff domain.RegionDiff
	next := make(map[domain.GridCell]*domain.Cache, s.dir.ActiveCount()+1)
	for row := center.Row - r; row <= center.Row+r; row++ {
		for col := center.Col - r; col <= center.Col+r; col++ {
			cell := domain.GridCell{Row: row, Col: col}
			if c, ok := s.dir.Active(cell); ok {
				next[cell] = c
				continue
			}
			if !s.rules.HasCache(cell) {
				continue
			}
			next[cell] = s.materialize(cell, &diff)
		}
	}

	diff.Exited = s.dir.Replace(next)
	metrics.CachesDehydrated.Add(float64(len(diff.Exited)))
	return diff
}

func (s *Session) materialize(cell domain.GridCell, diff *domain.RegionDiff) *domain.Cache {
	diff.Entered = append(diff.Entered, cell)

	if rec, ok := s.dir.TakeSaved(cell); ok {
		c, err := domain.RestoreCache(cell, rec)
		if err == nil {
			diff.Restored = append(diff.Restored, cell)
			metrics.CachesMaterialized.WithLabelValues("restored").Inc()
			return c
		}
		diff.Malformed = append(diff.Malformed, cell)
		metrics.MalformedRecords.Inc()
		s.log.Warn("saved cache record unreadable, minting fresh", "cell", cell.Key(), "error", err)
	}

	n := s.rules.InitialCoins(cell)
	s.minted += n
	metrics.CachesMaterialized.WithLabelValues("fresh").Inc()
	return domain.NewCache(cell, n)
}

// Move steps the player one cell in direction d.
func (s *Session) Move(ctx context.Context, d domain.Direction) (domain.RegionDiff, error) {
	dLat, dLng := d.Delta(s.rules.CellSize)
	return s.UpdatePosition(ctx, s.position.Offset(dLat, dLng))
}

// UpdatePosition moves the player to pos, persists the trail (keeping
// the most recent rules.TrailLimit points) and recomputes the active region. An invalid pos is rejected and leaves
// the session untouched.
func (s *Session) UpdatePosition(ctx context.Context, pos domain.Coordinate) (domain.RegionDiff, error) {
	if !pos.Valid() {
		return domain.RegionDiff{}, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinate, pos.Lat, pos.Lng)
	}

	kept := s.trail
	if lim := s.rules.TrailLimit; lim > 0 && len(kept) >= lim {
		kept = kept[len(kept)-lim+1:]
	}
	trail := make([]domain.Coordinate, len(kept), len(kept)+1)
	copy(trail, kept)
	trail = append(trail, pos)
	if err := s.saveTrail(ctx, trail); err != nil {
		return domain.RegionDiff{}, err
	}

	s.trail = trail
	s.position = pos
	return s.Recompute(), nil
}

// Take moves a coin from the live cache at cell into the inventory.
// With a nil origin the cache's own coin is preferred.
func (s *Session) Take(cell domain.GridCell, serial int, origin *domain.GridCell) (domain.Coin, error) {
	c, ok := s.dir.Active(cell)
	if !ok {
		return domain.Coin{}, fmt.Errorf("cell %s: %w", cell, domain.ErrCacheNotActive)
	}

	var (
		coin domain.Coin
		err  error
	)
	if origin != nil {
		coin, err = c.TakeOriginCoin(*origin, serial)
	} else {
		coin, err = c.TakeCoin(serial)
	}
	if err != nil {
		return domain.Coin{}, err
	}

	s.inventory.Take(coin)
	metrics.CoinsTaken.Inc()
	return coin, nil
}

// Deposit moves the most recently taken coin into the live cache at cell.
// It returns nil without error when the inventory is empty.
func (s *Session) Deposit(cell domain.GridCell) (*domain.Coin, error) {
	c, ok := s.dir.Active(cell)
	if !ok {
		return nil, fmt.Errorf("cell %s: %w", cell, domain.ErrCacheNotActive)
	}

	coin, ok := s.inventory.DepositMostRecent()
	if !ok {
		return nil, nil
	}
	c.DepositCoin(coin)
	metrics.CoinsDeposited.Inc()
	return &coin, nil
}

// Reset returns the player to the start, forgets every cache, empties the
// inventory and erases the persisted trail.
func (s *Session) Reset(ctx context.Context) (domain.RegionDiff, error) {
	if err := s.store.Remove(ctx, TrailKey(s.id)); err != nil {
		return domain.RegionDiff{}, fmt.Errorf("remove trail: %w", err)
	}

	s.dir.Clear()
	s.inventory.Clear()
	s.trail = nil
	s.minted = 0
	s.position = s.rules.Start
	return s.Recompute(), nil
}

// View builds the read model of the session.
func (s *Session) View() *domain.SessionView {
	caches := s.dir.ActiveCaches()
	views := make([]domain.CacheView, 0, len(caches))
	for _, c := range caches {
		info := s.grid.Info(c.Cell())
		views = append(views, domain.CacheView{
			Key:    info.Key,
			Cell:   info.Cell,
			Center: info.Center,
			Bounds: info.Bounds,
			Coins:  c.Coins(),
		})
	}

	return &domain.SessionView{
		ID:            s.id,
		Player:        s.position,
		PlayerCell:    s.PlayerCell(),
		Inventory:     s.inventory.Coins(),
		Caches:        views,
		SavedCaches:   s.dir.SavedCount(),
		TrailLength:   len(s.trail),
		TrailDistance: trailDistance(s.trail),
		CoinsMinted:   s.minted,
	}
}

func (s *Session) loadTrail(ctx context.Context) ([]domain.Coordinate, error) {
	raw, ok, err := s.store.Get(ctx, TrailKey(s.id))
	if err != nil {
		return nil, fmt.Errorf("load trail: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var points []domain.Coordinate
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		s.log.Warn("persisted trail unreadable, starting fresh", "error", err)
		return nil, nil
	}

	trail := points[:0]
	for _, p := range points {
		if p.Valid() {
			trail = append(trail, p)
		}
	}
	if lim := s.rules.TrailLimit; lim > 0 && len(trail) > lim {
		trail = trail[len(trail)-lim:]
	}
	return trail, nil
}

func (s *Session) saveTrail(ctx context.Context, trail []domain.Coordinate) error {
	data, err := json.Marshal(trail)
	if err != nil {
		return fmt.Errorf("encode trail: %w", err)
	}
	if err := s.store.Set(ctx, TrailKey(s.id), string(data)); err != nil {
		return fmt.Errorf("persist trail: %w", err)
	}
	return nil
}

func trailDistance(trail []domain.Coordinate) float64 {
	points := make([]orb.Point, len(trail))
	for i, c := range trail {
		points[i] = orb.Point{c.Lng, c.Lat}
	}
	return geospatial.PathLength(points)
}
