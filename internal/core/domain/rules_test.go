package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

func TestRules_Validate(t *testing.T) {
	assert.NoError(t, domain.DefaultRules().Validate())

	bad := domain.DefaultRules()
	bad.CellSize = 0
	bad.CacheProbability = 1.5
	bad.InitialCoinsMin = 5
	bad.InitialCoinsMax = 2
	bad.Start = domain.Coordinate{Lat: math.NaN()}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cell size")
	assert.Contains(t, err.Error(), "probability")
	assert.Contains(t, err.Error(), "initial coins")
	assert.Contains(t, err.Error(), "start")
}

func TestRules_ValidateGridResolution(t *testing.T) {
	r := domain.DefaultRules()
	r.CellSize = 1e-9
	assert.NoError(t, r.Validate())

	r.CellSize = 1e-15
	err := r.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too fine")

	r = domain.DefaultRules()
	r.TrailLimit = -1
	assert.ErrorContains(t, r.Validate(), "trail limit")
}

func TestRules_InitialCoinsInRange(t *testing.T) {
	r := domain.DefaultRules()
	for row := -20; row < 20; row++ {
		for col := -20; col < 20; col++ {
			n := r.InitialCoins(domain.GridCell{Row: row, Col: col})
			assert.GreaterOrEqual(t, n, r.InitialCoinsMin)
			assert.LessOrEqual(t, n, r.InitialCoinsMax)
		}
	}
}

func TestRules_HasCacheExtremes(t *testing.T) {
	r := domain.DefaultRules()
	cell := domain.GridCell{Row: 3, Col: 4}

	r.CacheProbability = 0
	assert.False(t, r.HasCache(cell))
	r.CacheProbability = 1
	assert.True(t, r.HasCache(cell))
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]domain.Direction{
		"north": domain.North, "N": domain.North,
		"south": domain.South, "e": domain.East, "West": domain.West,
	} {
		got, err := domain.ParseDirection(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := domain.ParseDirection("up")
	assert.ErrorIs(t, err, domain.ErrUnknownDirection)

	dLat, dLng := domain.West.Delta(1e-4)
	assert.Equal(t, 0.0, dLat)
	assert.Equal(t, -1e-4, dLng)
}
