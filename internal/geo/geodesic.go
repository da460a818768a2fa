// Package geo computes great-circle distance and bearing between
// latitude/longitude pairs on a spherical Earth.
package geo

import (
	"math"

	"github.com/mcoot/geoshooter/internal/model"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula
const EarthRadiusMeters = 6371000.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DistanceMeters returns the haversine great-circle distance between two points
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)
	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	// Rounding can push a fractionally above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BearingDegrees returns the initial bearing from point 1 to point 2,
// clockwise from true north, in [0, 360)
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dLambda := toRadians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return NormalizeDegrees(toDegrees(math.Atan2(y, x)))
}

// NormalizeDegrees maps any angle into [0, 360)
func NormalizeDegrees(deg float64) float64 {
	n := math.Mod(deg, 360)
	if n < 0 {
		n += 360
	}
	// math.Mod(-1e-15, 360) + 360 rounds to exactly 360
	if n >= 360 {
		n = 0
	}
	return n
}

// AngularDifference returns the shortest angular distance between two
// headings, in [0, 180]
func AngularDifference(a, b float64) float64 {
	diff := NormalizeDegrees(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// Distance is DistanceMeters for Coordinates
func Distance(from, to model.Coordinates) float64 {
	return DistanceMeters(from.Lat, from.Lon, to.Lat, to.Lon)
}

// Bearing is BearingDegrees for Coordinates
func Bearing(from, to model.Coordinates) float64 {
	return BearingDegrees(from.Lat, from.Lon, to.Lat, to.Lon)
}

// Destination returns the point reached by travelling distance meters from
// the start along the given initial bearing
func Destination(from model.Coordinates, bearing, distance float64) model.Coordinates {
	phi1 := toRadians(from.Lat)
	lambda1 := toRadians(from.Lon)
	theta := toRadians(bearing)
	delta := distance / EarthRadiusMeters

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(math.Min(1, math.Max(-1, sinPhi2)))
	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*sinPhi2
	lambda2 := lambda1 + math.Atan2(y, x)

	// Wrap longitude into [-180, 180)
	lon := math.Mod(toDegrees(lambda2)+540, 360) - 180
	return model.Coordinates{Lat: toDegrees(phi2), Lon: lon}
}
