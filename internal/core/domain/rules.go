package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/samirrijal/geocoin/internal/pkg/luck"
)

// Defaults of the classic board.
const (
	DefaultCellSize         = 1e-4
	DefaultRadius           = 8
	DefaultCacheProbability = 0.1
	DefaultInitialCoinsMin  = 1
	DefaultInitialCoinsMax  = 8
	DefaultStartLat         = 36.98949379578401
	DefaultStartLng         = -122.06277128548504
)

// maxGridIndex bounds |row| and |col|: beyond 2^53 adjacent cells are no
// longer distinct float64 multiples of the cell size.
const maxGridIndex = 1 << 53

// DefaultTrailLimit is how many trail points a session keeps.
const DefaultTrailLimit = 10000

// initialValueSuffix separates the coin-count seed from the existence seed.
const initialValueSuffix = ",initialValue"

// Rules fixes the board: grid resolution, region radius and the
// existence and coin-count draws.
type Rules struct {
	CellSize         float64
	Radius           int
	CacheProbability float64
	InitialCoinsMin  int
	InitialCoinsMax  int
	Start            Coordinate
	// TrailLimit caps the persisted trail to its most recent points.
	// Zero keeps every point.
	TrailLimit int
}

// DefaultRules returns the classic board.
func DefaultRules() Rules {
	return Rules{
		CellSize:         DefaultCellSize,
		Radius:           DefaultRadius,
		CacheProbability: DefaultCacheProbability,
		InitialCoinsMin:  DefaultInitialCoinsMin,
		InitialCoinsMax:  DefaultInitialCoinsMax,
		Start:            Coordinate{Lat: DefaultStartLat, Lng: DefaultStartLng},
		TrailLimit:       DefaultTrailLimit,
	}
}

// HasCache reports whether a cache exists at cell.
func (r Rules) HasCache(cell GridCell) bool {
	return luck.Luck(cell.Key()) < r.CacheProbability
}

// InitialCoins returns how many coins a fresh cache at cell is minted with,
// in [InitialCoinsMin, InitialCoinsMax].
func (r Rules) InitialCoins(cell GridCell) int {
	span := r.InitialCoinsMax - r.InitialCoinsMin + 1
	return r.InitialCoinsMin + int(math.Floor(luck.Luck(cell.Key()+initialValueSuffix)*float64(span)))
}

// Validate checks that the rules describe a usable board.
func (r Rules) Validate() error {
	var errs []string
	if !(r.CellSize > 0) || math.IsInf(r.CellSize, 0) {
		errs = append(errs, fmt.Sprintf("cell size must be positive, got %v", r.CellSize))
	} else if 180/r.CellSize > maxGridIndex {
		errs = append(errs, fmt.Sprintf("cell size %v is too fine to index the globe", r.CellSize))
	}
	if r.Radius < 0 {
		errs = append(errs, fmt.Sprintf("radius must not be negative, got %d", r.Radius))
	}
	if r.CacheProbability < 0 || r.CacheProbability > 1 {
		errs = append(errs, fmt.Sprintf("cache probability must be within [0,1], got %v", r.CacheProbability))
	}
	if r.InitialCoinsMin < 0 || r.InitialCoinsMax < r.InitialCoinsMin {
		errs = append(errs, fmt.Sprintf("initial coins range %d..%d is invalid", r.InitialCoinsMin, r.InitialCoinsMax))
	}
	if r.TrailLimit < 0 {
		errs = append(errs, fmt.Sprintf("trail limit must not be negative, got %d", r.TrailLimit))
	}
	if !r.Start.Valid() {
		errs = append(errs, fmt.Sprintf("start %v is not a valid coordinate", r.Start))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid rules: %s", strings.Join(errs, "; "))
	}
	return nil
}
