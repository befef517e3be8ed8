package pdsc

import (
	"testing"

	"github.com/jplmlia/pdsc/internal/config"
	"github.com/jplmlia/pdsc/internal/localize"
	"github.com/jplmlia/pdsc/internal/metadata"
)

func ctxTestConfig() *IngestConfig {
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

func ctxTestSource(productID string, centerLat, centerLon float64) SourceRecord {
	return SourceRecord{
		"PRODUCT_ID":       metadata.TextValue(productID),
		"LINES":            metadata.RealValue(400),
		"SAMPLES":          metadata.RealValue(400),
		"CENTER_LATITUDE":  metadata.RealValue(centerLat),
		"CENTER_LONGITUDE": metadata.RealValue(centerLon),
		"IMAGE_HEIGHT":     metadata.RealValue(20000),
		"IMAGE_WIDTH":      metadata.RealValue(20000),
		"NORTH_AZIMUTH":    metadata.RealValue(0),
	}
}

func TestIngestThenQueryEndToEnd(t *testing.T) {
	dir := t.TempDir()
	ingestor := NewIngestor(localize.MarsRadiusM)

	result, err := ingestor.Ingest("ctx", []SourceRecord{
		ctxTestSource("P01_001", 0, 0),
	}, ctxTestConfig(), dir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.RecordsStored != 1 {
		t.Fatalf("RecordsStored = %d, want 1", result.RecordsStored)
	}

	client, err := NewClient(dir)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	recs, err := client.QueryByObservationID("ctx", []string{"P01_001"})
	if err != nil {
		t.Fatalf("QueryByObservationID: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("QueryByObservationID returned %d records, want 1", len(recs))
	}

	ids, err := client.FindObservationsOfLatLon("ctx", 0, 0, 0)
	if err != nil {
		t.Fatalf("FindObservationsOfLatLon: %v", err)
	}
	if len(ids) != 1 || ids[0] != "P01_001" {
		t.Fatalf("FindObservationsOfLatLon = %v, want [P01_001]", ids)
	}
}

func TestNewClientRejectsMissingDirectory(t *testing.T) {
	if _, err := NewClient("/nonexistent/path/for/pdsc/test"); err == nil {
		t.Fatal("expected error for a nonexistent database directory")
	}
}
