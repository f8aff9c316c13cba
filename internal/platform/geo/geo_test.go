package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	t.Parallel()

	if got := Distance(40.71, -74.00, 40.71, -74.00); got != 0 {
		t.Fatalf("distance = %v, want 0", got)
	}
}

func TestDistanceKnownPairs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"manhattan blocks", 40.71, -74.00, 40.70, -74.01, 1400, 300},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343500, 2000},
		{"equator degree", 0, 0, 0, 1, 111195, 200},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusMeters, 1},
	}
	for _, tc := range cases {
		got := Distance(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.want) > tc.tolerance {
			t.Fatalf("%s: distance = %v, want %v±%v", tc.name, got, tc.want, tc.tolerance)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	t.Parallel()

	a := Distance(40.71, -74.00, 48.8566, 2.3522)
	b := Distance(48.8566, 2.3522, 40.71, -74.00)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("asymmetric distance: %v vs %v", a, b)
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	t.Parallel()

	lat, lng := 40.71, -74.00
	minLat, maxLat, minLng, maxLng := BoundingBox(lat, lng, 10000)
	if minLat >= lat || maxLat <= lat || minLng >= lng || maxLng <= lng {
		t.Fatalf("box [%v,%v]x[%v,%v] does not surround center", minLat, maxLat, minLng, maxLng)
	}
	// Points just inside the radius along each axis must fall inside the box.
	if d := Distance(lat, lng, maxLat, lng); d < 10000 {
		t.Fatalf("north edge only %vm away, box too tight", d)
	}
	if d := Distance(lat, lng, lat, maxLng); d < 10000 {
		t.Fatalf("east edge only %vm away, box too tight", d)
	}
}

func TestBoundingBoxNearPoleCoversAllLongitudes(t *testing.T) {
	t.Parallel()

	_, _, minLng, maxLng := BoundingBox(89.9999, 10, 50000)
	if minLng != -180 || maxLng != 180 {
		t.Fatalf("polar box = [%v,%v], want full longitude range", minLng, maxLng)
	}
}
