package triseg

import "github.com/jplmlia/pdsc/internal/sphere"

// IsInside reports whether the unit vector p lies within the triangle:
// exact on the sphere, since normals[i].p >= -epsilon for every edge iff p
// is on the inner side of every edge's great-circle plane.
func (s *TriSegment) IsInside(p sphere.Vector3) bool {
	for _, n := range s.Normals {
		if n.Dot(p) < -inclusionEpsilon {
			return false
		}
	}
	return true
}

// DistanceToPoint returns the geodesic distance in metres from the unit
// vector p to the triangle: zero if p is inside; otherwise the minimum
// geodesic distance to the triangle's vertices and to the foot of the
// perpendicular from p onto each edge plane, where that foot lies within
// the triangle.
func (s *TriSegment) DistanceToPoint(p sphere.Vector3) float64 {
	if s.IsInside(p) {
		return 0
	}

	candidates := make([]sphere.Vector3, 0, 6)
	candidates = append(candidates, s.XYZ[0], s.XYZ[1], s.XYZ[2])

	for _, n := range s.Normals {
		d := n.Dot(p)
		proj := sphere.Vector3{
			X: p.X - d*n.X,
			Y: p.Y - d*n.Y,
			Z: p.Z - d*n.Z,
		}
		if s.IsInside(proj) {
			if unit, err := proj.Unit(); err == nil {
				candidates = append(candidates, unit)
			}
		}
	}

	best := -1.0
	for _, c := range candidates {
		d := sphere.GeodesicDistanceUnit(p, c, s.BodyRadiusM)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// IncludesPoint implements the point-containment test for a PointQuery:
// exact inside-test when the query radius is zero, otherwise a
// distance-within-radius test.
func (s *TriSegment) IncludesPoint(q PointQuery) bool {
	if q.RadiusM == 0 {
		return s.IsInside(q.XYZ())
	}
	return s.DistanceToPoint(q.XYZ()) <= q.RadiusM
}

// OverlapsSegment reports whether s and other's footprints overlap,
// tested by projecting both triangles into s's tangent-plane chart and
// checking for positive-area convex polygon intersection. The tangent
// plane is a second-order-accurate local chart for triangles whose
// bounding caps are comparable in size to the cap radius, which is always
// true for candidates that already passed the segment tree's radius
// filter.
func (s *TriSegment) OverlapsSegment(other *TriSegment) bool {
	self2D := make([]point2D, 3)
	other2D := make([]point2D, 3)
	for i := 0; i < 3; i++ {
		x, y := s.Project2D(s.XYZ[i])
		self2D[i] = point2D{x, y}
		x, y = s.Project2D(other.XYZ[i])
		other2D[i] = point2D{x, y}
	}

	inter := intersectConvexPolygons(ensureCCW(self2D), ensureCCW(other2D))
	return polygonArea(inter) > 0
}
