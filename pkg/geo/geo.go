package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Walking speed assumptions for campus estimates. Paths are rarely
// straight lines, so the straight-line distance gets an urban factor.
const (
	walkingMetersPerMinute = 80.0
	urbanDetourFactor      = 1.4
)

var compassPoints = []string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

// HaversineMeters returns the great-circle distance between two points in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// CompassDirection returns the 8-point compass direction from the first
// point towards the second, e.g. "northeast".
func CompassDirection(fromLat, fromLon, toLat, toLon float64) string {
	phi1 := fromLat * math.Pi / 180
	phi2 := toLat * math.Pi / 180
	dLambda := (toLon - fromLon) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	bearing := math.Atan2(y, x) * 180 / math.Pi
	bearing = math.Mod(bearing+360, 360)

	idx := int(math.Round(bearing/45)) % 8
	return compassPoints[idx]
}

// WalkingMinutes estimates walking time in minutes for a straight-line
// distance in meters, inflated by the urban detour factor.
func WalkingMinutes(straightLineMeters float64) float64 {
	return straightLineMeters * urbanDetourFactor / walkingMetersPerMinute
}

// FormatWalkingEstimate renders a human-readable walking estimate such as
// "about 5 min walk (350 m)".
func FormatWalkingEstimate(straightLineMeters float64) string {
	minutes := int(math.Ceil(WalkingMinutes(straightLineMeters)))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("about %d min walk (%d m)", minutes, int(math.Round(straightLineMeters)))
}

// FormatDistance renders meters compactly, switching to kilometers at 1000m.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(math.Round(meters)))
}
