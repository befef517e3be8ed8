package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
scale_factors:
  line_exposure_duration: 0.001

index:
  - observation_id
  - spacecraft_clock_start_count

columns:
  - [PRODUCT_ID, product_id, text]
  - [OBSERVATION_ID, observation_id, text]
  - [CORNER1_LATITUDE, corner1_latitude, real]

segmentation:
  resolution: 75000
  localizer_kwargs:
    localizer_type: fourcorner
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instrument_metadata.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesColumnsAndScaleFactors(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Columns) != 3 {
		t.Fatalf("Columns = %v, want 3 entries", cfg.Columns)
	}
	if cfg.Columns[0] != (ColumnMapping{"PRODUCT_ID", "product_id", "text"}) {
		t.Fatalf("Columns[0] = %+v", cfg.Columns[0])
	}
	if got := cfg.ScaleFactor("line_exposure_duration"); got != 0.001 {
		t.Fatalf("ScaleFactor = %v, want 0.001", got)
	}
	if got := cfg.ScaleFactor("unconfigured_field"); got != 1 {
		t.Fatalf("ScaleFactor default = %v, want 1", got)
	}
	if cfg.Segmentation.Resolution != 75000 {
		t.Fatalf("Segmentation.Resolution = %v, want 75000", cfg.Segmentation.Resolution)
	}
	if len(cfg.Index) != 2 || cfg.Index[0] != "observation_id" {
		t.Fatalf("Index = %v", cfg.Index)
	}
}

func TestLoadAppliesDefaultResolution(t *testing.T) {
	path := writeConfig(t, "columns:\n  - [A, a, text]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Segmentation.Resolution != DefaultResolutionM {
		t.Fatalf("Resolution = %v, want default %v", cfg.Segmentation.Resolution, DefaultResolutionM)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error loading a nonexistent config file")
	}
}
