package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// PathLength returns the great-circle length in meters of the polyline
// through points, using orb's haversine distance on the WGS 84 radius.
func PathLength(points []orb.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.DistanceHaversine(points[i-1], points[i])
	}
	return total
}
