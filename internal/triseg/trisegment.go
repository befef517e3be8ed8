// Package triseg implements the spherical-triangle segment used to
// approximate observation footprints, its exact geometric predicates, and
// the footprint segmenter that drives a localizer over a pixel grid to
// produce a stream of segments.
package triseg

import (
	"sort"

	"github.com/jplmlia/pdsc/internal/sphere"
)

// inclusionEpsilon bounds the point-inside / overlap tests; at planetary
// radii this corresponds to well under a millimetre of error.
const inclusionEpsilon = 1e-10

// LatLon is a geodetic point in degrees.
type LatLon struct {
	Lat, Lon float64
}

// TriSegment is a spherical triangle on a reference sphere of radius
// BodyRadiusM, defined by three vertices enumerated counter-clockwise when
// viewed from outside the sphere. All derived quantities are computed at
// construction time (not lazily), per this module's redesign of the
// original's cached-property pattern: the input is eight doubles and the
// derived data is on the order of sixty doubles, cheap enough to always
// compute, and construction-time values make a TriSegment trivially safe
// to share across goroutines without synchronization.
type TriSegment struct {
	Vertices [3]LatLon
	XYZ      [3]sphere.Vector3

	Center          sphere.Vector3
	CenterLat       float64
	CenterLon       float64
	RadiusM         float64 // bounding-cap radius: MAX distance from center to any vertex
	Normals         [3]sphere.Vector3
	TangentU        sphere.Vector3
	TangentV        sphere.Vector3
	BodyRadiusM     float64
}

// New builds a TriSegment from three CCW vertices (the CCW invariant is
// the caller's responsibility; the footprint segmenter enforces it via
// flight-direction-dependent winding).
func New(v0, v1, v2 LatLon, bodyRadiusM float64) (*TriSegment, error) {
	xyz := [3]sphere.Vector3{
		sphere.LatLonToUnit(v0.Lat, v0.Lon),
		sphere.LatLonToUnit(v1.Lat, v1.Lon),
		sphere.LatLonToUnit(v2.Lat, v2.Lon),
	}

	avg := sphere.Vector3{
		X: (xyz[0].X + xyz[1].X + xyz[2].X) / 3,
		Y: (xyz[0].Y + xyz[1].Y + xyz[2].Y) / 3,
		Z: (xyz[0].Z + xyz[1].Z + xyz[2].Z) / 3,
	}
	center, err := avg.Unit()
	if err != nil {
		return nil, &ErrDegenerateTriangle{Reason: "vertex average is the zero vector"}
	}
	centerLat, centerLon, err := sphere.UnitToLatLon(center)
	if err != nil {
		return nil, &ErrDegenerateTriangle{Reason: "center has no well-defined lat/lon"}
	}

	var radiusM float64
	for _, p := range xyz {
		d := sphere.GeodesicDistanceUnit(center, p, bodyRadiusM)
		if d > radiusM {
			radiusM = d
		}
	}

	var normals [3]sphere.Vector3
	for i := 0; i < 3; i++ {
		n, err := xyz[i].Cross(xyz[(i+1)%3]).Unit()
		if err != nil {
			return nil, &ErrDegenerateTriangle{Reason: "two adjacent vertices are collinear with the center"}
		}
		normals[i] = n
	}

	tu, tv := tangentPlaneBasis(center)

	return &TriSegment{
		Vertices:    [3]LatLon{v0, v1, v2},
		XYZ:         xyz,
		Center:      center,
		CenterLat:   centerLat,
		CenterLon:   centerLon,
		RadiusM:     radiusM,
		Normals:     normals,
		TangentU:    tu,
		TangentV:    tv,
		BodyRadiusM: bodyRadiusM,
	}, nil
}

// tangentPlaneBasis returns two orthonormal vectors spanning the plane
// tangent to the unit sphere at normal, built by projecting the three
// standard basis vectors onto that plane, discarding the one most nearly
// parallel to normal (smallest projected norm), and normalizing the other
// two. This mirrors the original construction exactly.
func tangentPlaneBasis(normal sphere.Vector3) (sphere.Vector3, sphere.Vector3) {
	basis := [3]sphere.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	type projected struct {
		v    sphere.Vector3
		norm float64
	}
	projs := make([]projected, 3)
	for i, e := range basis {
		d := e.Dot(normal)
		p := sphere.Vector3{X: e.X - d*normal.X, Y: e.Y - d*normal.Y, Z: e.Z - d*normal.Z}
		projs[i] = projected{v: p, norm: p.Norm()}
	}
	sort.Slice(projs, func(i, j int) bool { return projs[i].norm < projs[j].norm })

	u := projs[1].v.Scale(1 / projs[1].norm)
	v := projs[2].v.Scale(1 / projs[2].norm)
	return u, v
}

// Project2D returns the 2-D tangent-plane coordinates of a unit vector
// under this segment's tangent plane basis, used to bring another
// triangle into the same local chart for the overlap test.
func (s *TriSegment) Project2D(p sphere.Vector3) (float64, float64) {
	return p.Dot(s.TangentU), p.Dot(s.TangentV)
}

