// Package geo provides great-circle distance math for feed filtering.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for distance calculations.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two
// coordinates. The intermediate value fed to Acos is clamped to [-1, 1] so
// floating-point rounding at identical or antipodal points cannot produce a
// domain error.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	deltaLambda := (lng2 - lng1) * degToRad

	central := math.Sin(phi1)*math.Sin(phi2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)
	central = math.Min(1, math.Max(-1, central))

	return EarthRadiusMeters * math.Acos(central)
}

// BoundingBox returns a latitude/longitude box that fully contains the circle
// of the given radius around the center. It is a coarse SQL prefilter only;
// rows inside the box must still pass the exact Distance check. Near the
// poles the longitude span degenerates to the full range.
func BoundingBox(lat, lng, radiusMeters float64) (minLat, maxLat, minLng, maxLng float64) {
	const degToRad = math.Pi / 180

	latDelta := radiusMeters / EarthRadiusMeters / degToRad
	minLat = lat - latDelta
	maxLat = lat + latDelta

	cosLat := math.Cos(lat * degToRad)
	if cosLat < 1e-6 {
		return minLat, maxLat, -180, 180
	}
	lngDelta := latDelta / cosLat
	if lngDelta >= 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, lng - lngDelta, lng + lngDelta
}
