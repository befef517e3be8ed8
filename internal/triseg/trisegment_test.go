package triseg

import (
	"math"
	"testing"

	"github.com/jplmlia/pdsc/internal/sphere"
)

const testRadiusM = 3396200.0

func TestIsInsideOctantTriangle(t *testing.T) {
	// Triangle spanning one octant of the sphere: (0,0), (0,90), (90,0).
	s, err := New(LatLon{0, 0}, LatLon{0, 90}, LatLon{90, 0}, testRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inside := sphere.Vector3{X: 1 / math.Sqrt(3), Y: 1 / math.Sqrt(3), Z: 1 / math.Sqrt(3)}
	if !s.IsInside(inside) {
		t.Fatal("expected (1,1,1)/sqrt(3) to be inside")
	}

	outside := sphere.Vector3{X: -1, Y: 1, Z: 1}
	outsideUnit, _ := outside.Unit()
	if s.IsInside(outsideUnit) {
		t.Fatal("expected (-1,1,1) to be outside")
	}
}

func TestDistanceToPointQuarterCircleAway(t *testing.T) {
	s, err := New(LatLon{0, 0}, LatLon{0, 90}, LatLon{90, 0}, testRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := sphere.Vector3{X: -1, Y: 0, Z: 0}
	d := s.DistanceToPoint(p)
	want := math.Pi / 2 * testRadiusM
	if math.Abs(d-want) > 1.0 {
		t.Fatalf("distance = %v, want %v", d, want)
	}
}

func TestPointQueryXYZ(t *testing.T) {
	q1, err := NewPointQuery(0, 0, 0)
	if err != nil {
		t.Fatalf("NewPointQuery: %v", err)
	}
	p := q1.XYZ()
	if math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y) > 1e-9 || math.Abs(p.Z) > 1e-9 {
		t.Fatalf("xyz = %+v, want (1,0,0)", p)
	}

	q2, err := NewPointQuery(0, 180, 0)
	if err != nil {
		t.Fatalf("NewPointQuery: %v", err)
	}
	p2 := q2.XYZ()
	if math.Abs(p2.X+1) > 1e-9 || math.Abs(p2.Y) > 1e-9 || math.Abs(p2.Z) > 1e-9 {
		t.Fatalf("xyz = %+v, want (-1,0,0)", p2)
	}

	if _, err := NewPointQuery(0, 0, -1); err == nil {
		t.Fatal("expected error for negative radius")
	}
	if _, err := NewPointQuery(91, 0, 0); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
}

func TestIsInsideImpliesZeroDistance(t *testing.T) {
	// P1: s.is_inside(p) => s.distance_to_point(p) == 0.
	s, err := New(LatLon{10, 10}, LatLon{10, 20}, LatLon{20, 15}, testRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.IsInside(s.Center) {
		t.Fatal("expected segment center to be inside its own triangle")
	}
	if d := s.DistanceToPoint(s.Center); d != 0 {
		t.Fatalf("distance to interior point = %v, want 0", d)
	}
}

func TestOutsideBoundingCapImpliesNotInside(t *testing.T) {
	// P2: geodesic(p, center) > radius_m => not is_inside(p).
	s, err := New(LatLon{10, 10}, LatLon{10, 20}, LatLon{20, 15}, testRadiusM)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	far := sphere.LatLonToUnit(-60, -60)
	d := sphere.GeodesicDistanceUnit(s.Center, far, testRadiusM)
	if d <= s.RadiusM {
		t.Fatalf("test setup invalid: chosen point is within the bounding cap (%v <= %v)", d, s.RadiusM)
	}
	if s.IsInside(far) {
		t.Fatal("point outside bounding cap must not be inside the triangle")
	}
}

func TestOverlapsSegmentSymmetric(t *testing.T) {
	a, err := New(LatLon{2, 1}, LatLon{2, -1}, LatLon{-2, -1}, testRadiusM)
	if err != nil {
		t.Fatalf("New a: %v", err)
	}
	b, err := New(LatLon{1, 2}, LatLon{1, -2}, LatLon{-1, -2}, testRadiusM)
	if err != nil {
		t.Fatalf("New b: %v", err)
	}
	if a.OverlapsSegment(b) != b.OverlapsSegment(a) {
		t.Fatal("overlap test is not symmetric")
	}
	if !a.OverlapsSegment(b) {
		t.Fatal("expected overlapping segments to report overlap")
	}
}

func TestOverlapsSegmentDisjoint(t *testing.T) {
	a, err := New(LatLon{2, 1}, LatLon{2, -1}, LatLon{-2, -1}, testRadiusM)
	if err != nil {
		t.Fatalf("New a: %v", err)
	}
	c, err := New(LatLon{2, 91}, LatLon{2, 89}, LatLon{-2, 89}, testRadiusM)
	if err != nil {
		t.Fatalf("New c: %v", err)
	}
	if a.OverlapsSegment(c) {
		t.Fatal("expected segments 90 degrees of longitude apart not to overlap")
	}
}
