package recommend

import (
	"math"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
)

// earthRadiusKM is the mean Earth radius used by the haversine distance.
const earthRadiusKM = 6371.0

// kmPerDegreeLat is the approximate north-south extent of one degree of
// latitude, used only for the cheap bounding-box prefilter.
const kmPerDegreeLat = 111.0

// haversineKM returns the great-circle distance between two points in km.
func haversineKM(a, b feature.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// boundingBox returns the degree window around origin that encloses every
// point within radiusKM.  It over-covers near the poles, which is fine: the
// box is only a prefilter ahead of the exact haversine check.
func boundingBox(origin feature.GeoPoint, radiusKM float64) (latDelta, lonDelta float64) {
	latDelta = radiusKM / kmPerDegreeLat
	cosLat := math.Cos(origin.Latitude * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta = radiusKM / (kmPerDegreeLat * cosLat)
	return latDelta, lonDelta
}

// inBoundingBox reports whether p falls inside the prefilter window.
func inBoundingBox(origin, p feature.GeoPoint, latDelta, lonDelta float64) bool {
	return math.Abs(p.Latitude-origin.Latitude) <= latDelta &&
		math.Abs(p.Longitude-origin.Longitude) <= lonDelta
}
