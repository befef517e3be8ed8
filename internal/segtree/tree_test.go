package segtree

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jplmlia/pdsc/internal/triseg"
)

const testBodyRadiusM = 3396200.0

func sampleCenters() []CenterInput {
	return []CenterInput{
		{ID: 1, Lat: 0, Lon: 0, RadiusM: 5000},
		{ID: 2, Lat: 0, Lon: 1, RadiusM: 5000},
		{ID: 3, Lat: 10, Lon: 10, RadiusM: 5000},
		{ID: 4, Lat: -45, Lon: 170, RadiusM: 5000},
		{ID: 5, Lat: 89, Lon: 0, RadiusM: 5000},
	}
}

func TestBuildRejectsEmpty(t *testing.T) {
	if _, err := Build(nil, testBodyRadiusM); err == nil {
		t.Fatal("expected error building a tree from zero segments")
	}
}

func TestQueryPointFindsNearbyCenter(t *testing.T) {
	tree, err := Build(sampleCenters(), testBodyRadiusM)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	q, err := triseg.NewPointQuery(0, 0, 0)
	if err != nil {
		t.Fatalf("NewPointQuery: %v", err)
	}
	ids := tree.QueryPoint(q)
	if len(ids) == 0 {
		t.Fatal("expected at least one candidate near (0,0)")
	}
	found := false
	for _, id := range ids {
		if id == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected segment 1 among candidates, got %v", ids)
	}
}

func TestQueryPointExcludesFarSegment(t *testing.T) {
	tree, err := Build(sampleCenters(), testBodyRadiusM)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Antipodal to (0,0): should not return segment 1 or 2.
	q, err := triseg.NewPointQuery(0, 180, 0)
	if err != nil {
		t.Fatalf("NewPointQuery: %v", err)
	}
	ids := tree.QueryPoint(q)
	for _, id := range ids {
		if id == 1 || id == 2 {
			t.Fatalf("expected antipodal query to exclude nearby-equator segments, got %v", ids)
		}
	}
}

func TestQuerySoundness(t *testing.T) {
	// P5: every segment whose triangle could possibly intersect the query
	// ball must appear among the candidates; since candidates are a
	// superset by construction (haversine ball with radius inflated by
	// maxRadiusM), every exact match found by brute-force haversine
	// distance must be in the returned set.
	centers := sampleCenters()
	tree, err := Build(centers, testBodyRadiusM)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	q, err := triseg.NewPointQuery(10, 10, 50000)
	if err != nil {
		t.Fatalf("NewPointQuery: %v", err)
	}
	ids := tree.QueryPoint(q)
	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	qxyz := q.XYZ()
	for _, c := range centers {
		cxyz := tree.centers[c.ID]
		d := chordDistance(qxyz, cxyz)
		totalRadiusM := q.RadiusM + tree.maxRadiusM
		theta := totalRadiusM / testBodyRadiusM
		chordBound := 2 * math.Sin(theta/2)
		if d <= chordBound && !idSet[c.ID] {
			t.Fatalf("segment %d within bound but missing from candidates %v", c.ID, ids)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tree, err := Build(sampleCenters(), testBodyRadiusM)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	path := filepath.Join(t.TempDir(), "segments.tree")
	if err := tree.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Len() != tree.Len() {
		t.Fatalf("Len after round trip = %d, want %d", loaded.Len(), tree.Len())
	}
	if loaded.BodyRadiusM() != tree.BodyRadiusM() {
		t.Fatalf("BodyRadiusM after round trip = %v, want %v", loaded.BodyRadiusM(), tree.BodyRadiusM())
	}
	if loaded.MaxRadiusM() != tree.MaxRadiusM() {
		t.Fatalf("MaxRadiusM after round trip = %v, want %v", loaded.MaxRadiusM(), tree.MaxRadiusM())
	}

	q, err := triseg.NewPointQuery(0, 0, 0)
	if err != nil {
		t.Fatalf("NewPointQuery: %v", err)
	}
	before := tree.QueryPoint(q)
	after := loaded.QueryPoint(q)
	if len(before) != len(after) {
		t.Fatalf("query result size changed after round trip: %v vs %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("query results differ after round trip: %v vs %v", before, after)
		}
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tree")
	if err := os.WriteFile(path, []byte("not a segment tree artifact"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error loading a corrupt artifact")
	}
}
