// internal/matching/geo.go
package matching

import "math"

const (
	EarthRadiusKm = 6371.0

	// FallbackDistanceKm stands in for an unknown location: a medium penalty, not a failure.
	FallbackDistanceKm = 50.0
)

// Distance returns the great-circle distance in kilometres between two points.
// If any coordinate is missing the fallback distance is returned.
func Distance(lat1, lng1, lat2, lng2 *float64) float64 {
	return DistanceWithFallback(lat1, lng1, lat2, lng2, FallbackDistanceKm)
}

func DistanceWithFallback(lat1, lng1, lat2, lng2 *float64, fallback float64) float64 {
	if lat1 == nil || lng1 == nil || lat2 == nil || lng2 == nil {
		return fallback
	}
	return haversine(*lat1, *lng1, *lat2, *lng2)
}

func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
