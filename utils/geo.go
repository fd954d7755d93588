package utils

import (
	"errors"
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used by all distance math
	EarthRadiusKm = 6371.0
	// EarthRadiusMeters is EarthRadiusKm in meters
	EarthRadiusMeters = EarthRadiusKm * 1000
	// metersPerDegreeLat is the length of one degree of latitude
	metersPerDegreeLat = 111320.0
)

// HaversineMeters calculates the great-circle distance between two points in meters
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// BoundingBox is a lat/lon rectangle that encloses a circle
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundingBoxAround returns a rectangle containing every point within radiusMeters of (lat, lon).
// It is used as a cheap index-friendly prefilter before the exact Haversine check.
func BoundingBoxAround(lat, lon, radiusMeters float64) BoundingBox {
	dLat := radiusMeters / metersPerDegreeLat
	box := BoundingBox{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat > 1e-6 {
		dLon := radiusMeters / (metersPerDegreeLat * cosLat)
		if dLon < 180 {
			box.MinLon = lon - dLon
			box.MaxLon = lon + dLon
		}
	}
	return box
}

// CrossesAntimeridian reports whether the box wraps past ±180 longitude
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.MinLon < -180 || b.MaxLon > 180
}

// GridKey rounds a coordinate to 3 decimal places (a ~111 m grid) for distinct-location counting
func GridKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}

// ErrInvalidLocation is returned for coordinates outside the valid ranges
var ErrInvalidLocation = errors.New("invalid location")

// ValidateLocation checks if location coordinates are valid
func ValidateLocation(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidLocation)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidLocation)
	}
	return nil
}
