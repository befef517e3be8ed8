// Package config decodes the YAML ingestion configuration: scale
// factors, secondary indices, column mappings, and segmentation
// parameters for one instrument.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultResolutionM is the segmenter resolution used when a config
// omits segmentation.resolution.
const DefaultResolutionM = 50000.0

// ColumnMapping is one [source_field, stored_name, sql_type] triple from
// the YAML columns list.
type ColumnMapping struct {
	SourceField string
	StoredName  string
	SQLType     string
}

// UnmarshalYAML accepts the three-element sequence form used throughout
// the instrument config files (`[field, name, type]`), rather than a
// mapping, matching the original configuration's list-of-lists shape.
func (c *ColumnMapping) UnmarshalYAML(value *yaml.Node) error {
	var triple [3]string
	if err := value.Decode(&triple); err != nil {
		return fmt.Errorf("config: column mapping must be a 3-element list: %w", err)
	}
	c.SourceField = triple[0]
	c.StoredName = triple[1]
	c.SQLType = triple[2]
	return nil
}

// SegmentationConfig controls the footprint segmenter invoked during
// ingestion.
type SegmentationConfig struct {
	Resolution      float64        `yaml:"resolution"`
	LocalizerKwargs map[string]any `yaml:"localizer_kwargs"`
}

// IngestConfig is the decoded form of a `<instrument>_metadata.yaml`
// configuration file.
type IngestConfig struct {
	ScaleFactors map[string]float64  `yaml:"scale_factors"`
	Index        []string            `yaml:"index"`
	Columns      []ColumnMapping     `yaml:"columns"`
	Segmentation SegmentationConfig  `yaml:"segmentation"`
}

// Load reads and decodes an ingest configuration file.
func Load(path string) (*IngestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg IngestConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if cfg.Segmentation.Resolution <= 0 {
		cfg.Segmentation.Resolution = DefaultResolutionM
	}
	return &cfg, nil
}

// ScaleFactor returns the configured multiplicative rescale for a source
// field, or 1 if none is configured.
func (c *IngestConfig) ScaleFactor(sourceField string) float64 {
	if f, ok := c.ScaleFactors[sourceField]; ok {
		return f
	}
	return 1
}
