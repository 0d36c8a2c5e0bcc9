package geospatial

import (
	"math"

	"github.com/paulmach/orb"
)

// Bucket returns the index of the size-wide bucket containing v.
// Floor, not truncation: -0.5 with size 1 lands in bucket -1.
func Bucket(v, size float64) int {
	return int(math.Floor(v / size))
}

// CellBound returns the bounding box of grid cell (row, col).
// orb points are [lon, lat], so row spans Y and col spans X.
func CellBound(row, col int, size float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{float64(col) * size, float64(row) * size},
		Max: orb.Point{float64(col+1) * size, float64(row+1) * size},
	}
}
