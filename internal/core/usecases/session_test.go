package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/core/usecases"
)

// --- Mock KeyValueStore ---

type mockStore struct {
	mu     sync.Mutex
	data   map[string]string
	setErr error
	sets   int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type cacheRow struct {
	row, col, coins int
}

// Caches around the default start with the default rules.
var startRegion = []cacheRow{
	{369886, -1220622, 1},
	{369887, -1220635, 5},
	{369888, -1220633, 1}, {369888, -1220630, 8}, {369888, -1220627, 2}, {369888, -1220623, 6}, {369888, -1220620, 6},
	{369889, -1220632, 3}, {369889, -1220626, 5}, {369889, -1220623, 7},
	{369890, -1220629, 6},
	{369891, -1220630, 3}, {369891, -1220623, 2},
	{369892, -1220626, 6}, {369892, -1220622, 7},
	{369893, -1220634, 8}, {369893, -1220633, 7}, {369893, -1220624, 1},
	{369895, -1220623, 1}, {369895, -1220621, 5},
	{369896, -1220635, 7}, {369896, -1220634, 8},
	{369897, -1220623, 8}, {369897, -1220620, 2},
	{369898, -1220630, 5}, {369898, -1220623, 6},
	{369899, -1220634, 4}, {369899, -1220632, 5},
	{369900, -1220621, 4},
	{369902, -1220634, 2},
}

func openSession(t *testing.T, store *mockStore) *usecases.Session {
	t.Helper()
	s, err := usecases.NewSession(context.Background(), "s1", domain.DefaultRules(), store)
	require.NoError(t, err)
	return s
}

func totalCoins(t *testing.T, s *usecases.Session) int {
	t.Helper()
	n := len(s.Inventory())
	for _, c := range s.ActiveCaches() {
		n += c.Len()
	}
	for cell, rec := range s.SavedRecords() {
		c, err := domain.RestoreCache(cell, rec)
		require.NoError(t, err)
		n += c.Len()
	}
	return n
}

func TestSession_StartRegion(t *testing.T) {
	s := openSession(t, newMockStore())

	assert.Equal(t, domain.GridCell{Row: 369894, Col: -1220628}, s.PlayerCell())

	caches := s.ActiveCaches()
	require.Len(t, caches, len(startRegion))
	for i, want := range startRegion {
		c := caches[i]
		assert.Equal(t, domain.GridCell{Row: want.row, Col: want.col}, c.Cell(), "cache %d", i)
		require.Equal(t, want.coins, c.Len(), "cache %s", c.Cell())
		for serial, coin := range c.Coins() {
			assert.Equal(t, domain.Coin{Row: want.row, Col: want.col, Serial: serial}, coin)
		}
	}
	assert.Equal(t, 141, s.Minted())
	assert.Equal(t, 141, totalCoins(t, s))
}

func TestSession_RegionWithinRadius(t *testing.T) {
	s := openSession(t, newMockStore())
	center := s.PlayerCell()
	for _, c := range s.ActiveCaches() {
		cell := c.Cell()
		assert.LessOrEqual(t, abs(cell.Row-center.Row), domain.DefaultRadius)
		assert.LessOrEqual(t, abs(cell.Col-center.Col), domain.DefaultRadius)
	}
}

func TestSession_SurvivingCachesKeepIdentity(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMockStore())

	before := make(map[domain.GridCell]*domain.Cache)
	for _, c := range s.ActiveCaches() {
		before[c.Cell()] = c
	}

	_, err := s.Move(ctx, domain.North)
	require.NoError(t, err)

	kept := 0
	for _, c := range s.ActiveCaches() {
		if prev, ok := before[c.Cell()]; ok {
			assert.Same(t, prev, c, "cache %s replaced", c.Cell())
			kept++
		}
	}
	assert.Greater(t, kept, 0)
}

func TestSession_ReentryRestoresState(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMockStore())
	cell := domain.GridCell{Row: 369889, Col: -1220632}

	coin, err := s.Take(cell, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Coin{Row: 369889, Col: -1220632, Serial: 0}, coin)

	var exited bool
	for i := 0; i < 5; i++ {
		diff, err := s.Move(ctx, domain.East)
		require.NoError(t, err)
		exited = exited || containsCell(diff.Exited, cell)
	}
	require.True(t, exited)
	_, ok := s.Cache(cell)
	require.False(t, ok)
	assert.Contains(t, s.SavedRecords(), cell)

	var restored bool
	for i := 0; i < 5; i++ {
		diff, err := s.Move(ctx, domain.West)
		require.NoError(t, err)
		restored = restored || containsCell(diff.Restored, cell)
	}
	require.True(t, restored)

	c, ok := s.Cache(cell)
	require.True(t, ok)
	assert.Equal(t, []domain.Coin{
		{Row: 369889, Col: -1220632, Serial: 1},
		{Row: 369889, Col: -1220632, Serial: 2},
	}, c.Coins())
	assert.NotContains(t, s.SavedRecords(), cell)
	assert.Equal(t, []domain.Coin{coin}, s.Inventory())
}

func TestSession_CoinsConserved(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMockStore())

	walk := []domain.Direction{
		domain.North, domain.North, domain.East, domain.East, domain.East,
		domain.South, domain.West, domain.West, domain.North, domain.North,
		domain.North, domain.North, domain.North, domain.North, domain.North,
		domain.North, domain.North, domain.South, domain.South, domain.East,
	}
	for i, d := range walk {
		_, err := s.Move(ctx, d)
		require.NoError(t, err)

		caches := s.ActiveCaches()
		require.NotEmpty(t, caches)
		if i%2 == 0 {
			c := caches[i%len(caches)]
			if c.Len() > 0 {
				_, err := s.Take(c.Cell(), c.Coins()[0].Serial, nil)
				require.NoError(t, err)
			}
		} else {
			_, err := s.Deposit(caches[0].Cell())
			require.NoError(t, err)
		}
		require.Equal(t, s.Minted(), totalCoins(t, s), "step %d", i)
	}
}

func TestSession_TakeAndDepositErrors(t *testing.T) {
	s := openSession(t, newMockStore())

	_, err := s.Take(domain.GridCell{Row: 369894, Col: -1220628}, 0, nil)
	assert.ErrorIs(t, err, domain.ErrCacheNotActive)

	_, err = s.Take(domain.GridCell{Row: 369886, Col: -1220622}, 7, nil)
	assert.ErrorIs(t, err, domain.ErrCoinNotFound)

	_, err = s.Deposit(domain.GridCell{Row: 0, Col: 0})
	assert.ErrorIs(t, err, domain.ErrCacheNotActive)

	coin, err := s.Deposit(domain.GridCell{Row: 369886, Col: -1220622})
	require.NoError(t, err)
	assert.Nil(t, coin)
}

func TestSession_DepositIsLastInFirstOut(t *testing.T) {
	s := openSession(t, newMockStore())
	a := domain.GridCell{Row: 369888, Col: -1220630}
	b := domain.GridCell{Row: 369886, Col: -1220622}

	first, err := s.Take(a, 3, nil)
	require.NoError(t, err)
	second, err := s.Take(a, 5, nil)
	require.NoError(t, err)

	got, err := s.Deposit(b)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)

	c, _ := s.Cache(b)
	coins := c.Coins()
	assert.Equal(t, second, coins[len(coins)-1])
	assert.Equal(t, []domain.Coin{first}, s.Inventory())
}

func TestSession_InvalidPositionRejected(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	s := openSession(t, store)
	start := s.Position()

	for _, pos := range []domain.Coordinate{
		{Lat: math.NaN(), Lng: 0},
		{Lat: 0, Lng: math.Inf(1)},
		{Lat: 91, Lng: 0},
		{Lat: 0, Lng: -180.5},
	} {
		_, err := s.UpdatePosition(ctx, pos)
		assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
	}
	assert.Equal(t, start, s.Position())
	assert.Empty(t, s.Trail())
	assert.Zero(t, store.sets)
}

func TestSession_StoreFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	s := openSession(t, store)
	start := s.Position()
	active := len(s.ActiveCaches())

	store.setErr = errors.New("disk full")
	_, err := s.Move(ctx, domain.North)
	require.Error(t, err)

	assert.Equal(t, start, s.Position())
	assert.Empty(t, s.Trail())
	assert.Len(t, s.ActiveCaches(), active)
}

func TestSession_TrailResumes(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	s := openSession(t, store)

	for _, d := range []domain.Direction{domain.North, domain.North, domain.West} {
		_, err := s.Move(ctx, d)
		require.NoError(t, err)
	}
	require.Len(t, s.Trail(), 3)
	assert.Contains(t, store.data, usecases.TrailKey("s1"))

	resumed := openSession(t, store)
	assert.Equal(t, s.Position(), resumed.Position())
	assert.Equal(t, s.Trail(), resumed.Trail())
	assert.Equal(t, domain.GridCell{Row: 369896, Col: -1220629}, resumed.PlayerCell())
}

func TestSession_TrailKeepsMostRecentPoints(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	rules := domain.DefaultRules()
	rules.TrailLimit = 3

	s, err := usecases.NewSession(ctx, "s1", rules, store)
	require.NoError(t, err)
	var visited []domain.Coordinate
	for i := 0; i < 5; i++ {
		_, err := s.Move(ctx, domain.North)
		require.NoError(t, err)
		visited = append(visited, s.Position())
	}
	assert.Equal(t, visited[2:], s.Trail())

	var stored []domain.Coordinate
	require.NoError(t, json.Unmarshal([]byte(store.data[usecases.TrailKey("s1")]), &stored))
	assert.Equal(t, visited[2:], stored)

	rules.TrailLimit = 2
	resumed, err := usecases.NewSession(ctx, "s1", rules, store)
	require.NoError(t, err)
	assert.Equal(t, visited[3:], resumed.Trail())
	assert.Equal(t, visited[4], resumed.Position())
}

func TestSession_UnreadableTrailStartsFresh(t *testing.T) {
	store := newMockStore()
	store.data[usecases.TrailKey("s1")] = "{not json"

	s := openSession(t, store)
	assert.Equal(t, domain.DefaultRules().Start, s.Position())
	assert.Empty(t, s.Trail())
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	s := openSession(t, store)

	_, err := s.Take(domain.GridCell{Row: 369886, Col: -1220622}, 0, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := s.Move(ctx, domain.South)
		require.NoError(t, err)
	}
	require.NotEmpty(t, s.SavedRecords())

	_, err = s.Reset(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultRules().Start, s.Position())
	assert.Empty(t, s.Inventory())
	assert.Empty(t, s.Trail())
	assert.Empty(t, s.SavedRecords())
	assert.NotContains(t, store.data, usecases.TrailKey("s1"))
	assert.Len(t, s.ActiveCaches(), len(startRegion))
	c, ok := s.Cache(domain.GridCell{Row: 369886, Col: -1220622})
	require.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestSession_View(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, newMockStore())
	_, err := s.Move(ctx, domain.North)
	require.NoError(t, err)
	_, err = s.Move(ctx, domain.North)
	require.NoError(t, err)

	v := s.View()
	assert.Equal(t, "s1", v.ID)
	assert.Equal(t, s.PlayerCell(), v.PlayerCell)
	assert.Equal(t, 2, v.TrailLength)
	assert.InDelta(t, 11.1, v.TrailDistance, 0.5)
	require.NotEmpty(t, v.Caches)
	for _, cv := range v.Caches {
		assert.Equal(t, cv.Cell.Key(), cv.Key)
		assert.True(t, cv.Bounds.MinLat <= cv.Center.Lat && cv.Center.Lat <= cv.Bounds.MaxLat)
		assert.True(t, cv.Bounds.MinLng <= cv.Center.Lng && cv.Center.Lng <= cv.Bounds.MaxLng)
	}
}

func containsCell(cells []domain.GridCell, cell domain.GridCell) bool {
	for _, c := range cells {
		if c == cell {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// On a nanodegree grid rows exceed 32 bits; saved caches must still come
// back intact.
func TestSession_FineGridRestoresCaches(t *testing.T) {
	ctx := context.Background()
	const (
		size = 1e-9
		row0 = 37_000_000_000
		col0 = -122_000_000_000
	)
	at := func(k int) domain.Coordinate {
		return domain.Coordinate{Lat: (float64(row0+k) + 0.5) * size, Lng: (float64(col0) + 0.5) * size}
	}

	rules := domain.DefaultRules()
	rules.CellSize = size
	rules.Radius = 1
	rules.CacheProbability = 1
	rules.Start = at(0)

	s, err := usecases.NewSession(ctx, "fine", rules, newMockStore())
	require.NoError(t, err)
	home := domain.GridCell{Row: row0, Col: col0}
	require.Equal(t, home, s.PlayerCell())
	require.Len(t, s.ActiveCaches(), 9)

	c, ok := s.Cache(home)
	require.True(t, ok)
	before := c.Len()
	_, err = s.Take(home, 0, nil)
	require.NoError(t, err)

	for k := 1; k <= 5; k++ {
		_, err := s.UpdatePosition(ctx, at(k))
		require.NoError(t, err)
	}
	minted := s.Minted()
	assert.Equal(t, totalCoins(t, s), minted)

	for k := 4; k >= 0; k-- {
		diff, err := s.UpdatePosition(ctx, at(k))
		require.NoError(t, err)
		assert.Empty(t, diff.Malformed)
	}
	assert.Equal(t, minted, s.Minted(), "returning cells must be restored, not re-minted")
	assert.Equal(t, minted, totalCoins(t, s))

	c, ok = s.Cache(home)
	require.True(t, ok)
	assert.Equal(t, before-1, c.Len())
	assert.Len(t, s.Inventory(), 1)
}
