// Package segtree implements the coarse spatial index over segment
// centers: a haversine "ball tree" realized as a 3-dimensional R-tree over
// unit-sphere Cartesian vectors.
//
// No ball-tree library appears anywhere in the retrieved example corpus,
// but the teacher repository's own spatial index dependency,
// github.com/dhconnelly/rtreego, is exactly the right shape for this:
// a haversine angular radius theta around a center corresponds exactly to
// a Euclidean chord-length radius 2*sin(theta/2) around that center's unit
// vector, so an R-tree range query with the chord radius returns exactly
// the same candidates as a haversine ball tree with the angular radius --
// no approximation, and no special-casing at the poles or the
// antimeridian, since unit-vector distance is coordinate-free by
// construction.
package segtree

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/jplmlia/pdsc/internal/sphere"
	"github.com/jplmlia/pdsc/internal/triseg"
)

const (
	treeDimensions = 3
	minChildren    = 25
	maxChildren    = 50

	// pointEpsilon is the half-width of the degenerate bounding cube
	// rtreego requires around each indexed point.
	pointEpsilon = 1e-9
)

// CenterInput is one segment's id, center, and bounding-cap radius, as
// required to build a Tree.
type CenterInput struct {
	ID      int64
	Lat     float64 // degrees
	Lon     float64 // degrees
	RadiusM float64
}

// Tree is the immutable, haversine-metric spatial index over segment
// centers for one instrument.
type Tree struct {
	rtree       *rtreego.Rtree
	centers     map[int64]sphere.Vector3
	maxRadiusM  float64
	bodyRadiusM float64
}

// indexedPoint adapts a segment center to rtreego.Spatial.
type indexedPoint struct {
	id  int64
	xyz sphere.Vector3
}

func (p indexedPoint) Bounds() rtreego.Rect {
	point := rtreego.Point{
		p.xyz.X - pointEpsilon,
		p.xyz.Y - pointEpsilon,
		p.xyz.Z - pointEpsilon,
	}
	lengths := []float64{2 * pointEpsilon, 2 * pointEpsilon, 2 * pointEpsilon}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// Build constructs a Tree over the given segment centers. bodyRadiusM is
// the reference body's radius, used to convert angular radii to metres
// and back.
func Build(segments []CenterInput, bodyRadiusM float64) (*Tree, error) {
	if len(segments) == 0 {
		return nil, &ErrEmptyTree{}
	}

	maxRadiusM := 0.0
	for _, s := range segments {
		if s.RadiusM > maxRadiusM {
			maxRadiusM = s.RadiusM
		}
	}

	return fromCenters(segments, maxRadiusM, bodyRadiusM), nil
}

// fromCenters builds the R-tree and center map for a precomputed
// maxRadiusM, shared by Build (which derives it from the segments) and
// Load (which reads it back from the artifact).
func fromCenters(segments []CenterInput, maxRadiusM, bodyRadiusM float64) *Tree {
	rtree := rtreego.NewTree(treeDimensions, minChildren, maxChildren)
	centers := make(map[int64]sphere.Vector3, len(segments))

	for _, s := range segments {
		xyz := sphere.LatLonToUnit(s.Lat, s.Lon)
		centers[s.ID] = xyz
		rtree.Insert(indexedPoint{id: s.ID, xyz: xyz})
	}

	return &Tree{
		rtree:       rtree,
		centers:     centers,
		maxRadiusM:  maxRadiusM,
		bodyRadiusM: bodyRadiusM,
	}
}

// MaxRadiusM returns the largest bounding-cap radius among the segments
// this tree was built from.
func (t *Tree) MaxRadiusM() float64 { return t.maxRadiusM }

// BodyRadiusM returns the reference body radius this tree was built with.
func (t *Tree) BodyRadiusM() float64 { return t.bodyRadiusM }

// Len reports the number of segment centers indexed.
func (t *Tree) Len() int { return len(t.centers) }

// Export returns every indexed (id, lat, lon) center in degrees, in no
// particular order, for artifact serialization.
func (t *Tree) Export() []CenterInput {
	out := make([]CenterInput, 0, len(t.centers))
	for id, xyz := range t.centers {
		lat, lon, _ := sphere.UnitToLatLon(xyz)
		out = append(out, CenterInput{ID: id, Lat: lat, Lon: lon})
	}
	return out
}

// QueryPoint returns the segment ids, in ascending order, whose center lies
// within haversine radius (q.RadiusM + MaxRadiusM) of q. Results are
// coarse candidates; callers must still apply an exact predicate.
func (t *Tree) QueryPoint(q triseg.PointQuery) []int64 {
	return t.queryXYZ(q.XYZ(), q.RadiusM)
}

// QuerySegment returns the segment ids, in ascending order, whose center
// lies within haversine radius (s.RadiusM + MaxRadiusM) of s's center.
func (t *Tree) QuerySegment(s *triseg.TriSegment) []int64 {
	return t.queryXYZ(s.Center, s.RadiusM)
}

func (t *Tree) queryXYZ(center sphere.Vector3, radiusM float64) []int64 {
	totalRadiusM := radiusM + t.maxRadiusM
	theta := totalRadiusM / t.bodyRadiusM // angular radius, radians
	if theta > math.Pi {
		theta = math.Pi
	}
	chord := 2 * math.Sin(theta/2)
	if chord < pointEpsilon {
		chord = pointEpsilon
	}

	point := rtreego.Point{center.X - chord, center.Y - chord, center.Z - chord}
	lengths := []float64{2 * chord, 2 * chord, 2 * chord}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	candidates := t.rtree.SearchIntersect(rect)
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ip := c.(indexedPoint)
		if chordDistance(center, ip.xyz) <= chord+1e-12 {
			ids = append(ids, ip.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func chordDistance(a, b sphere.Vector3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
