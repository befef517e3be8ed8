package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jplmlia/pdsc/internal/config"
	"github.com/jplmlia/pdsc/internal/localize"
	"github.com/jplmlia/pdsc/internal/metadata"
	"github.com/jplmlia/pdsc/internal/store"
)

func init() {
	if !localize.Registered("ctx") {
		localize.RegisterDefaults()
	}
}

func ctxConfig() *config.IngestConfig {
	return &config.IngestConfig{
		Index: []string{"observation_id"},
		Columns: []config.ColumnMapping{
			{SourceField: "PRODUCT_ID", StoredName: "observation_id", SQLType: "TEXT"},
			{SourceField: "LINES", StoredName: "lines", SQLType: "REAL"},
			{SourceField: "SAMPLES", StoredName: "samples", SQLType: "REAL"},
			{SourceField: "CENTER_LATITUDE", StoredName: "center_latitude", SQLType: "REAL"},
			{SourceField: "CENTER_LONGITUDE", StoredName: "center_longitude", SQLType: "REAL"},
			{SourceField: "IMAGE_HEIGHT", StoredName: "image_height", SQLType: "REAL"},
			{SourceField: "IMAGE_WIDTH", StoredName: "image_width", SQLType: "REAL"},
			{SourceField: "NORTH_AZIMUTH", StoredName: "north_azimuth", SQLType: "REAL"},
		},
		Segmentation: config.SegmentationConfig{Resolution: 20000},
	}
}

func ctxSourceRecord(productID string) SourceRecord {
	return SourceRecord{
		"PRODUCT_ID":       metadata.TextValue(productID),
		"LINES":            metadata.RealValue(400),
		"SAMPLES":          metadata.RealValue(400),
		"CENTER_LATITUDE":  metadata.RealValue(0),
		"CENTER_LONGITUDE": metadata.RealValue(0),
		"IMAGE_HEIGHT":     metadata.RealValue(20000),
		"IMAGE_WIDTH":      metadata.RealValue(20000),
		"NORTH_AZIMUTH":    metadata.RealValue(0),
	}
}

func TestIngestWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	driver := &Driver{BodyRadiusM: localize.MarsRadiusM}

	result, err := driver.Ingest("ctx", []SourceRecord{ctxSourceRecord("P01_001")}, ctxConfig(), dir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.RecordsStored != 1 {
		t.Fatalf("RecordsStored = %d, want 1", result.RecordsStored)
	}
	if result.RecordsSkipped != 0 {
		t.Fatalf("RecordsSkipped = %d, want 0", result.RecordsSkipped)
	}
	if result.SegmentsWritten == 0 {
		t.Fatal("expected at least one segment to be written")
	}

	for _, suffix := range []string{metadataSuffix, segmentSuffix, segmentTreeSuffix} {
		path := filepath.Join(dir, "ctx"+suffix)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected artifact %s to exist: %v", path, err)
		}
	}

	metaStore, err := store.OpenMetadataStore(filepath.Join(dir, "ctx"+metadataSuffix), "ctx")
	if err != nil {
		t.Fatalf("OpenMetadataStore: %v", err)
	}
	defer metaStore.Close()
	recs, err := metaStore.QueryByObservationID("observation_id", []string{"P01_001"})
	if err != nil {
		t.Fatalf("QueryByObservationID: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("stored metadata rows = %d, want 1", len(recs))
	}
}

func TestIngestSkipsRecordsTheLocalizerRejects(t *testing.T) {
	dir := t.TempDir()
	driver := &Driver{BodyRadiusM: localize.MarsRadiusM}

	badRecord := ctxSourceRecord("P01_BAD")
	delete(badRecord, "LINES") // missing required field -> ErrInvalidParameters from the localizer

	result, err := driver.Ingest("ctx", []SourceRecord{
		ctxSourceRecord("P01_GOOD"),
		badRecord,
	}, ctxConfig(), dir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.RecordsSkipped != 1 {
		t.Fatalf("RecordsSkipped = %d, want 1", result.RecordsSkipped)
	}
	if result.RecordsStored != 2 {
		t.Fatalf("RecordsStored = %d, want 2 (metadata is still stored for skipped records)", result.RecordsStored)
	}
}

func TestRepairIndexRebuildsTreeFromSegmentTable(t *testing.T) {
	dir := t.TempDir()
	driver := &Driver{BodyRadiusM: localize.MarsRadiusM}

	if _, err := driver.Ingest("ctx", []SourceRecord{ctxSourceRecord("P01_001")}, ctxConfig(), dir); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	segPath := filepath.Join(dir, "ctx"+segmentSuffix)
	treePath := filepath.Join(dir, "ctx_repaired_tree.bin")
	if err := RepairIndex(segPath, treePath, localize.MarsRadiusM); err != nil {
		t.Fatalf("RepairIndex: %v", err)
	}
	if _, err := os.Stat(treePath); err != nil {
		t.Fatalf("expected repaired tree artifact to exist: %v", err)
	}
}
