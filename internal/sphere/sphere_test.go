package sphere

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLatLonToUnitRoundTrip(t *testing.T) {
	cases := []struct {
		lat, lon float64
	}{
		{0, 0},
		{0, 180},
		{90, 0},
		{-90, 45},
		{45.5, -120.25},
	}
	for _, c := range cases {
		p := LatLonToUnit(c.lat, c.lon)
		if n := p.Norm(); !almostEqual(n, 1, 1e-12) {
			t.Fatalf("LatLonToUnit(%v,%v) not unit length: %v", c.lat, c.lon, n)
		}
		lat, lon, err := UnitToLatLon(p)
		if err != nil {
			t.Fatalf("UnitToLatLon: %v", err)
		}
		if math.Abs(c.lat) == 90 {
			// longitude is undefined at the poles; only check latitude.
			if !almostEqual(lat, c.lat, 1e-9) {
				t.Fatalf("pole latitude mismatch: got %v want %v", lat, c.lat)
			}
			continue
		}
		if !almostEqual(lat, c.lat, 1e-9) || !almostEqual(lon, c.lon, 1e-9) {
			t.Fatalf("round trip mismatch: got (%v,%v) want (%v,%v)", lat, lon, c.lat, c.lon)
		}
	}
}

func TestUnitToLatLonDegenerate(t *testing.T) {
	_, _, err := UnitToLatLon(Vector3{})
	if err == nil {
		t.Fatal("expected ErrDegenerate for zero vector")
	}
	var degenerate *ErrDegenerate
	if !asDegenerate(err, &degenerate) {
		t.Fatalf("expected *ErrDegenerate, got %T", err)
	}
}

func asDegenerate(err error, target **ErrDegenerate) bool {
	e, ok := err.(*ErrDegenerate)
	if ok {
		*target = e
	}
	return ok
}

func TestGeodesicDistanceAntipodal(t *testing.T) {
	const r = 3396200.0 // Mars radius in metres
	d := GeodesicDistance(0, 0, 0, 180, r)
	want := math.Pi * r
	if !almostEqual(d, want, 1e-3) {
		t.Fatalf("antipodal distance = %v, want %v", d, want)
	}
}

func TestGeodesicDistanceZero(t *testing.T) {
	d := GeodesicDistance(10, 20, 10, 20, 3396200)
	if !almostEqual(d, 0, 1e-9) {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestForwardGeodesicSphericalQuarterCircle(t *testing.T) {
	const r = 3396200.0
	res, err := ForwardGeodesic(0, 0, 90, math.Pi/2*r, r, 0)
	if err != nil {
		t.Fatalf("ForwardGeodesic: %v", err)
	}
	if !almostEqual(res.Lat, 0, 1e-6) || !almostEqual(res.Lon, 90, 1e-6) {
		t.Fatalf("quarter-circle east = (%v,%v), want (0,90)", res.Lat, res.Lon)
	}
}

func TestForwardGeodesicEllipsoidalMatchesSphericalWhenFlattened(t *testing.T) {
	const r = 3396200.0
	const f = 1.0 / 169.8 // Mars flattening
	res, err := ForwardGeodesic(10, 20, 45, 50000, r, f)
	if err != nil {
		t.Fatalf("ForwardGeodesic: %v", err)
	}
	// sanity: destination should be near but not identical to the spherical case
	sph, _ := ForwardGeodesic(10, 20, 45, 50000, r, 0)
	dist := GeodesicDistance(res.Lat, res.Lon, sph.Lat, sph.Lon, r)
	if dist > 5000 {
		t.Fatalf("ellipsoidal and spherical forward geodesics diverge too much: %v m", dist)
	}
}

func TestForwardGeodesicRoundTrip(t *testing.T) {
	const r = 3396200.0
	const f = 1.0 / 169.8
	fwd, err := ForwardGeodesic(-20, 10, 60, 25000, r, f)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back, err := ForwardGeodesic(fwd.Lat, fwd.Lon, normalizeAzimuthDeg(fwd.Azimuth+180), 25000, r, f)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	dist := GeodesicDistance(back.Lat, back.Lon, -20, 10, r)
	if dist > 1.0 {
		t.Fatalf("round trip off by %v m", dist)
	}
}
