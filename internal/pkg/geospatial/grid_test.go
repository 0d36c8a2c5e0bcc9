package geospatial_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/geocoin/internal/pkg/geospatial"
)

func TestBucket_FloorsNegatives(t *testing.T) {
	cases := []struct {
		v, size float64
		want    int
	}{
		{0, 1, 0},
		{0.5, 1, 0},
		{0.999, 1, 0},
		{1, 1, 1},
		{-0.5, 1, -1},
		{-1, 1, -1},
		{-1.0001, 1, -2},
		{36.98949379578401, 1e-4, 369894},
		{-122.06277128548504, 1e-4, -1220628},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, geospatial.Bucket(tc.v, tc.size), "Bucket(%v, %v)", tc.v, tc.size)
	}
}

func TestBucket_Contiguous(t *testing.T) {
	// Walking across zero never skips or repeats a bucket out of order.
	prev := geospatial.Bucket(-5, 0.25)
	for v := -5.0; v <= 5; v += 0.01 {
		b := geospatial.Bucket(v, 0.25)
		assert.True(t, b == prev || b == prev+1, "jump at %v: %d -> %d", v, prev, b)
		prev = b
	}
}

func TestCellBound_TilesPlane(t *testing.T) {
	const size = 0.5
	b := geospatial.CellBound(-2, 3, size)
	right := geospatial.CellBound(-2, 4, size)
	up := geospatial.CellBound(-1, 3, size)

	assert.Equal(t, b.Max.X(), right.Min.X())
	assert.Equal(t, b.Max.Y(), up.Min.Y())
	assert.Equal(t, -1.0, b.Min.Y())
	assert.Equal(t, 1.5, b.Min.X())

	c := b.Center()
	assert.Equal(t, (b.Min.Y()+b.Max.Y())/2, c.Y())
	assert.Equal(t, (b.Min.X()+b.Max.X())/2, c.X())
}

func TestPathLength(t *testing.T) {
	// One degree of latitude on the 6378137 m sphere.
	d := geospatial.PathLength([]orb.Point{{0, 0}, {0, 1}})
	assert.InDelta(t, 111319.5, d, 1)

	assert.Equal(t, 0.0, geospatial.PathLength(nil))
	assert.Equal(t, 0.0, geospatial.PathLength([]orb.Point{{10, 10}}))
	assert.InDelta(t, 2*d, geospatial.PathLength([]orb.Point{{0, 0}, {0, 1}, {0, 0}}), 1e-6)
	assert.False(t, math.IsNaN(geospatial.PathLength([]orb.Point{{0, -90}, {0, 90}})))
}
