package geo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/geoshooter/internal/model"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
		tolerance              float64
	}{
		{
			name: "london to paris",
			lat1: 51.5074, lon1: -0.1278, lat2: 48.8566, lon2: 2.3522,
			expected: 343556.06, tolerance: 1,
		},
		{
			name: "sydney to melbourne",
			lat1: -33.8688, lon1: 151.2093, lat2: -37.8136, lon2: 144.9631,
			expected: 713427.48, tolerance: 1,
		},
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lon1: 0, lat2: 0, lon2: 1,
			expected: 111194.93, tolerance: 0.01,
		},
		{
			name: "a few meters north",
			lat1: 0, lon1: 0, lat2: 0.00005, lon2: 0,
			expected: 5.5597, tolerance: 0.001,
		},
		{
			name: "identical points",
			lat1: 12.34, lon1: 56.78, lat2: 12.34, lon2: 56.78,
			expected: 0, tolerance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("DistanceMeters() = %f, want %f ± %f", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestBearingDegrees(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expected               float64
	}{
		{name: "due north", lat1: 0, lon1: 0, lat2: 1, lon2: 0, expected: 0},
		{name: "due east", lat1: 0, lon1: 0, lat2: 0, lon2: 1, expected: 90},
		{name: "due south", lat1: 0, lon1: 0, lat2: -1, lon2: 0, expected: 180},
		{name: "due west", lat1: 0, lon1: 0, lat2: 0, lon2: -1, expected: 270},
		{name: "london to paris", lat1: 51.5074, lon1: -0.1278, lat2: 48.8566, lon2: 2.3522, expected: 148.1156},
		{name: "paris to london", lat1: 48.8566, lon1: 2.3522, lat2: 51.5074, lon2: -0.1278, expected: 330.0211},
		{name: "sydney to melbourne", lat1: -33.8688, lon1: 151.2093, lat2: -37.8136, lon2: 144.9631, expected: 230.2808},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingDegrees(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("BearingDegrees() = %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{725, 5},
		{-90, 270},
		{-720, 0},
		{-1e-15, 0},
	}

	for _, tt := range tests {
		got := NormalizeDegrees(tt.input)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tt.input, got, tt.expected)
		}
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeDegrees(%v) = %v, out of [0, 360)", tt.input, got)
		}
	}
}

func TestAngularDifference(t *testing.T) {
	tests := []struct {
		a, b     float64
		expected float64
	}{
		{0, 0, 0},
		{10, 5, 5},
		{5, 10, 5},
		{359, 1, 2},
		{1, 359, 2},
		{0, 180, 180},
		{90, 270, 180},
		{45, -45, 90},
		{720, 0, 0},
	}

	for _, tt := range tests {
		got := AngularDifference(tt.a, tt.b)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("AngularDifference(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}

func randomCoordinates(r *rand.Rand) model.Coordinates {
	return model.Coordinates{
		Lat: r.Float64()*170 - 85,
		Lon: r.Float64()*360 - 180,
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		a := randomCoordinates(r)
		b := randomCoordinates(r)
		assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6, "a=%v b=%v", a, b)
		assert.Equal(t, 0.0, Distance(a, a), "a=%v", a)
	}
}

func TestBearingIsInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		a := randomCoordinates(r)
		b := randomCoordinates(r)
		got := Bearing(a, b)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, 360.0)
	}
}

// Initial bearings are only reciprocal for nearby points; over long great
// circles the forward and back azimuths diverge from a clean 180.
func TestBearingIsReciprocalAtPlayingDistances(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 500; i++ {
		a := randomCoordinates(r)
		b := model.Coordinates{
			Lat: a.Lat + (r.Float64()-0.5)*0.002,
			Lon: a.Lon + (r.Float64()-0.5)*0.002,
		}
		if a == b {
			continue
		}
		forward := Bearing(a, b)
		back := Bearing(b, a)
		assert.InDelta(t, 180, AngularDifference(forward, back), 0.01, "a=%v b=%v", a, b)
	}
}

func TestDestination(t *testing.T) {
	origin := model.Coordinates{Lat: 51.5007, Lon: -0.1246}

	for _, bearing := range []float64{0, 45, 90, 180, 270, 359} {
		dest := Destination(origin, bearing, 8)
		assert.InDelta(t, 8, Distance(origin, dest), 1e-6, "bearing %v", bearing)
		assert.InDelta(t, 0, AngularDifference(bearing, Bearing(origin, dest)), 1e-3, "bearing %v", bearing)
	}
}

func TestDestinationZeroDistance(t *testing.T) {
	origin := model.Coordinates{Lat: -33.8568, Lon: 151.2153}

	dest := Destination(origin, 123, 0)
	assert.InDelta(t, origin.Lat, dest.Lat, 1e-12)
	assert.InDelta(t, origin.Lon, dest.Lon, 1e-12)
}

func TestDestinationWrapsAntimeridian(t *testing.T) {
	dest := Destination(model.Coordinates{Lat: 0, Lon: 179.99999}, 90, 10)
	assert.Less(t, dest.Lon, 0.0)
	assert.GreaterOrEqual(t, dest.Lon, -180.0)
}
