package geo

import "math"

// EarthRadiusMeters is the Earth radius used for Haversine distance.
const EarthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// points (lat/lng in degrees).
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(lat1), rad(lat2)
	Δφ := rad(lat2 - lat1)
	Δλ := rad(lng2 - lng1)
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BoundingDeltas returns the lat/lng degree deltas covering radiusMeters
// around latitude lat, used as a coarse SQL prefilter before exact
// Haversine checks. ~111km per degree of latitude; a degree of longitude
// shrinks by cos(lat), so the longitude delta widens accordingly (clamped
// near the poles where the box would degenerate).
func BoundingDeltas(lat, radiusMeters float64) (dLat, dLng float64) {
	dLat = radiusMeters / 111000.0
	c := math.Cos(lat * math.Pi / 180)
	if c < 0.01 {
		c = 0.01
	}
	dLng = dLat / c
	return dLat, dLng
}

// ValidCoords reports whether lat/lng are within range.
func ValidCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
