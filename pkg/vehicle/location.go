package vehicle

import (
	"math"

	"github.com/gigabridge/gigabridge/pkg/types"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b types.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// HomeArea is a circle around the home location used to gate automatic
// charging on the vehicle actually being home.
type HomeArea struct {
	Home         types.Location
	RadiusMeters float64
}

// Contains reports whether the given position is within the area.
func (h HomeArea) Contains(loc types.Location) bool {
	return DistanceMeters(h.Home, loc) <= h.RadiusMeters
}
