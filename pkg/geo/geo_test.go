package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	d := HaversineMeters(52.1205, 11.6276, 52.1205, 11.6276)
	assert.Equal(t, 0.0, d)
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// One degree of latitude is roughly 111.19 km.
	d := HaversineMeters(52.0, 11.6, 53.0, 11.6)
	assert.InDelta(t, 111195, d, 100)
}

func TestHaversineMeters_CampusScale(t *testing.T) {
	// Two points roughly 1.3 km apart on a northeast diagonal.
	d := HaversineMeters(52.1205, 11.6276, 52.1288, 11.6410)
	assert.InDelta(t, 1300, d, 60)
}

func TestCompassDirection(t *testing.T) {
	assert.Equal(t, "north", CompassDirection(52.0, 11.6, 53.0, 11.6))
	assert.Equal(t, "south", CompassDirection(53.0, 11.6, 52.0, 11.6))
	assert.Equal(t, "east", CompassDirection(52.0, 11.0, 52.0, 12.0))
	assert.Equal(t, "west", CompassDirection(52.0, 12.0, 52.0, 11.0))
	assert.Equal(t, "northeast", CompassDirection(52.1205, 11.6276, 52.1288, 11.6410))
}

func TestWalkingMinutes(t *testing.T) {
	// 400m straight line -> 560m effective -> 7 minutes at 80 m/min.
	assert.InDelta(t, 7.0, WalkingMinutes(400), 0.01)
}

func TestFormatWalkingEstimate(t *testing.T) {
	assert.Equal(t, "about 7 min walk (400 m)", FormatWalkingEstimate(400))
	// Very short distances round up to a minute.
	assert.Equal(t, "about 1 min walk (20 m)", FormatWalkingEstimate(20))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "350 m", FormatDistance(350.4))
	assert.Equal(t, "1.3 km", FormatDistance(1300))
}
