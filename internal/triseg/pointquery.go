package triseg

import "github.com/jplmlia/pdsc/internal/sphere"

// PointQuery is a surface point plus a search radius in metres; radius
// zero means an exact containment test.
type PointQuery struct {
	Lat, Lon float64
	RadiusM  float64
	xyz      sphere.Vector3
}

// NewPointQuery validates lat/radius and builds a PointQuery.
func NewPointQuery(lat, lon, radiusM float64) (PointQuery, error) {
	if radiusM < 0 {
		return PointQuery{}, &ErrInvalidPointQuery{Reason: "radius must be non-negative"}
	}
	if lat < -90 || lat > 90 {
		return PointQuery{}, &ErrInvalidPointQuery{Reason: "latitude out of range"}
	}
	return PointQuery{
		Lat: lat, Lon: lon, RadiusM: radiusM,
		xyz: sphere.LatLonToUnit(lat, lon),
	}, nil
}

// XYZ returns the query point as a unit vector.
func (q PointQuery) XYZ() sphere.Vector3 { return q.xyz }
