// Package pdsc is the public API for PDSC: querying ingested
// observation metadata by predicate, by observation id, and spatially
// (point-in-footprint, footprint-overlap), plus driving ingestion of new
// cumulative indices. It wraps the internal packages the way the
// teacher's pkg/s57 wraps internal/parser: callers depend only on this
// package's exported types.
package pdsc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jplmlia/pdsc/internal/config"
	"github.com/jplmlia/pdsc/internal/ingest"
	"github.com/jplmlia/pdsc/internal/localize"
	"github.com/jplmlia/pdsc/internal/metadata"
	"github.com/jplmlia/pdsc/internal/query"
	"github.com/jplmlia/pdsc/internal/store"
)

// Re-exported types so callers never need to import the internal
// packages directly.
type (
	Record       = metadata.Record
	Value        = metadata.Value
	Condition    = store.Condition
	SourceRecord = ingest.SourceRecord
	IngestConfig = config.IngestConfig
	IngestResult = ingest.Result
)

const (
	metadataSuffix = "_metadata.db"
	segmentSuffix  = "_segments.db"
	treeSuffix     = "_segment_tree.bin"
)

func init() {
	// Instrument constructors are registered once, here, rather than
	// left to each binary's main: both cmd/pdsc-ingest and
	// cmd/pdsc-server need the same registry, and the registry's
	// freeze-after-first-lookup contract means this must happen before
	// any Client or Ingestor is used.
	if !localize.Registered("ctx") {
		localize.RegisterDefaults()
	}
}

// Client queries a directory of ingested PDSC databases.
type Client struct {
	engine *query.Engine
}

// NewClient discovers every `<instrument>_metadata.db` file under
// databaseDir and opens read-only handles to each instrument's metadata
// store, and (where present) its segment store and segment-tree
// artifact.
func NewClient(databaseDir string) (*Client, error) {
	entries, err := os.ReadDir(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("pdsc: reading database directory %q: %w", databaseDir, err)
	}

	handles := make(map[string]query.InstrumentHandle)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metadataSuffix) {
			continue
		}
		instrument := strings.TrimSuffix(e.Name(), metadataSuffix)

		metaStore, err := store.OpenMetadataStore(filepath.Join(databaseDir, e.Name()), instrument)
		if err != nil {
			return nil, fmt.Errorf("pdsc: opening metadata store for %q: %w", instrument, err)
		}

		handle := query.InstrumentHandle{
			Metadata:    metaStore,
			BodyRadiusM: localize.MarsRadiusM,
			IDColumn:    "observation_id",
		}

		segPath := filepath.Join(databaseDir, instrument+segmentSuffix)
		treePath := filepath.Join(databaseDir, instrument+treeSuffix)
		if fileExists(segPath) && fileExists(treePath) {
			segStore, err := store.OpenSegmentStore(segPath)
			if err != nil {
				return nil, fmt.Errorf("pdsc: opening segment store for %q: %w", instrument, err)
			}
			handle.Segments = segStore
			handle.SegmentTreePath = treePath
		}

		handles[instrument] = handle
	}

	return &Client{engine: query.NewEngine(handles)}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Query returns every metadata record for instrument satisfying the
// conjunction of conditions.
func (c *Client) Query(instrument string, conditions []Condition) ([]Record, error) {
	return c.engine.Query(instrument, conditions)
}

// QueryByObservationID returns every metadata record for instrument
// whose observation id matches any of observationIDs.
func (c *Client) QueryByObservationID(instrument string, observationIDs []string) ([]Record, error) {
	return c.engine.QueryByObservationID(instrument, observationIDs)
}

// FindObservationsOfLatLon returns the sorted, deduplicated observation
// ids from instrument whose footprint includes (lat, lon) within
// radiusM.
func (c *Client) FindObservationsOfLatLon(instrument string, lat, lon, radiusM float64) ([]string, error) {
	return c.engine.FindObservationsOfLatLon(instrument, lat, lon, radiusM)
}

// FindOverlappingObservations returns the sorted, deduplicated
// observation ids from otherInstrument whose footprint overlaps the
// footprint of observationID from instrument.
func (c *Client) FindOverlappingObservations(instrument, observationID, otherInstrument string) ([]string, error) {
	return c.engine.FindOverlappingObservations(instrument, observationID, otherInstrument)
}

// Ingestor drives ingestion of new cumulative-index records into a
// database directory.
type Ingestor struct {
	driver ingest.Driver
}

// NewIngestor builds an Ingestor using bodyRadiusM as the reference
// body radius for segmentation and spatial indexing.
func NewIngestor(bodyRadiusM float64) *Ingestor {
	return &Ingestor{driver: ingest.Driver{BodyRadiusM: bodyRadiusM}}
}

// Ingest converts sources into a metadata table, segment table, and
// segment-tree artifact for instrument under outputDir.
func (ig *Ingestor) Ingest(instrument string, sources []SourceRecord, cfg *IngestConfig, outputDir string) (IngestResult, error) {
	return ig.driver.Ingest(instrument, sources, cfg, outputDir)
}

// RepairIndex rebuilds a segment-tree artifact from an existing segment
// table, without re-parsing metadata or re-running the segmenter.
func (ig *Ingestor) RepairIndex(segmentDBPath, treeOutputPath string) error {
	return ingest.RepairIndex(segmentDBPath, treeOutputPath, ig.driver.BodyRadiusM)
}

// LoadConfig reads a YAML ingest configuration file.
func LoadConfig(path string) (*IngestConfig, error) {
	return config.Load(path)
}
