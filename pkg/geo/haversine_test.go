package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	// one degree of latitude spans roughly 111.19 km
	d := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 100)

	// small offsets near Seattle come out around 140 m
	d = HaversineMeters(47.6062, -122.3321, 47.6072, -122.3311)
	assert.InDelta(t, 135, d, 30)

	assert.Zero(t, HaversineMeters(47.6062, -122.3321, 47.6062, -122.3321))

	// symmetric in its arguments
	assert.InDelta(t,
		HaversineMeters(10, 20, 30, 40),
		HaversineMeters(30, 40, 10, 20), 1e-6)
}

func TestBoundingDeltas(t *testing.T) {
	dLat, dLng := BoundingDeltas(0, 1000)
	assert.InDelta(t, 0.009, dLat, 0.001)
	assert.InDelta(t, dLat, dLng, 1e-9) // no longitude stretch at the equator

	// at higher latitudes the box must still cover the radius due east
	dLat, dLng = BoundingDeltas(47.6062, 1000)
	assert.Greater(t, HaversineMeters(47.6062, 0, 47.6062+dLat, 0), 1000.0)
	assert.Greater(t, HaversineMeters(47.6062, 0, 47.6062, dLng), 1000.0)

	// clamped near the poles instead of blowing up
	_, dLng = BoundingDeltas(89.9, 1000)
	assert.Less(t, dLng, 1.0)
}

func TestValidCoords(t *testing.T) {
	assert.True(t, ValidCoords(0, 0))
	assert.True(t, ValidCoords(90, 180))
	assert.True(t, ValidCoords(-90, -180))
	assert.False(t, ValidCoords(90.1, 0))
	assert.False(t, ValidCoords(0, -180.1))
}
