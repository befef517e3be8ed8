package triseg

import "math"

// point2D is a point in the 2-D tangent-plane chart used by the overlap test.
type point2D struct {
	X, Y float64
}

// No 2-D polygon clipping library appears anywhere in the retrieved
// example corpus; this Sutherland-Hodgman clipper is a small, standard,
// self-contained routine appropriate for the convex triangle-vs-triangle
// case this package needs.

// intersectConvexPolygons clips the convex polygon subject against the
// convex polygon clip (both given counter-clockwise) and returns the
// (possibly empty) convex polygon of their intersection.
func intersectConvexPolygons(subject, clip []point2D) []point2D {
	output := subject
	n := len(clip)
	for i := 0; i < n && len(output) > 0; i++ {
		a := clip[i]
		b := clip[(i+1)%n]
		input := output
		output = nil
		if len(input) == 0 {
			break
		}
		prev := input[len(input)-1]
		prevInside := isLeftOf(a, b, prev)
		for _, cur := range input {
			curInside := isLeftOf(a, b, cur)
			if curInside {
				if !prevInside {
					output = append(output, lineIntersect(prev, cur, a, b))
				}
				output = append(output, cur)
			} else if prevInside {
				output = append(output, lineIntersect(prev, cur, a, b))
			}
			prev = cur
			prevInside = curInside
		}
	}
	return output
}

// isLeftOf reports whether p is on the left side of the directed edge a->b
// (inclusive of the line itself, matching the inclusion-epsilon used
// elsewhere in this package's predicates).
func isLeftOf(a, b, p point2D) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	return cross >= -inclusionEpsilon
}

// lineIntersect returns the intersection of line p1-p2 with line a-b,
// assuming they are not parallel (guaranteed by the Sutherland-Hodgman
// clip loop, which only calls this when one endpoint is inside and the
// other is outside the a-b half-plane).
func lineIntersect(p1, p2, a, b point2D) point2D {
	x1, y1, x2, y2 := p1.X, p1.Y, p2.X, p2.Y
	x3, y3, x4, y4 := a.X, a.Y, b.X, b.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < 1e-18 {
		return p1
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	return point2D{
		X: x1 + t*(x2-x1),
		Y: y1 + t*(y2-y1),
	}
}

// ensureCCW returns p, reversed if necessary, so that it is wound
// counter-clockwise. The tangent-plane projection of a CCW-on-the-sphere
// triangle is not guaranteed to stay CCW in 2-D depending on the chosen
// basis handedness, and intersectConvexPolygons requires its clip polygon
// to be CCW.
func ensureCCW(p []point2D) []point2D {
	if signedArea(p) >= 0 {
		return p
	}
	reversed := make([]point2D, len(p))
	for i, v := range p {
		reversed[len(p)-1-i] = v
	}
	return reversed
}

func signedArea(p []point2D) float64 {
	area := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return area / 2
}

// polygonArea returns the signed area of a polygon via the shoelace formula.
func polygonArea(p []point2D) float64 {
	if len(p) < 3 {
		return 0
	}
	area := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return math.Abs(area) / 2
}
