package geo

import "math"

// Mean Earth radius in meters for the spherical distance model.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two coordinates in
// meters using the haversine formula. Inputs are decimal degrees; callers are
// responsible for rejecting out-of-range latitudes and longitudes before
// calling. No rounding is applied here.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	deltaPhi := radians(lat2 - lat1)
	deltaLambda := radians(lon2 - lon1)

	sinPhi := math.Sin(deltaPhi / 2)
	sinLambda := math.Sin(deltaLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
