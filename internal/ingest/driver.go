// Package ingest implements the ingestion driver: it turns parsed
// per-instrument source records into a metadata table, a segment table,
// and a segment-tree artifact, writing all three atomically via
// temp-file-plus-rename.
package ingest

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/jplmlia/pdsc/internal/config"
	"github.com/jplmlia/pdsc/internal/localize"
	"github.com/jplmlia/pdsc/internal/metadata"
	"github.com/jplmlia/pdsc/internal/segtree"
	"github.com/jplmlia/pdsc/internal/store"
	"github.com/jplmlia/pdsc/internal/triseg"
)

const (
	metadataSuffix   = "_metadata.db"
	segmentSuffix    = "_segments.db"
	segmentTreeSuffix = "_segment_tree.bin"
)

// SourceRecord is one parsed cumulative-index row, keyed by the PDS
// field name as it appears in the source table (before column renaming
// or unit rescaling).
type SourceRecord map[string]metadata.Value

// Result summarizes one Ingest run.
type Result struct {
	RecordsStored   int
	SegmentsWritten int
	RecordsSkipped  int
}

// Driver drives ingestion for one instrument at a time.
type Driver struct {
	// BodyRadiusM is the reference body radius used both as the
	// segmenter's triangle-construction radius and as the segment
	// tree's angular<->metric conversion factor.
	BodyRadiusM float64
}

// Ingest converts sources into a metadata table, segments every record
// (skipping records the localizer or segmenter rejects), and writes the
// metadata table, segment table, and (when at least one segment was
// produced) segment-tree artifact for instrument under outputDir. A
// segmentation failure on one record never
// aborts the run; it is logged and that record contributes no segments.
func (d *Driver) Ingest(instrument string, sources []SourceRecord, cfg *config.IngestConfig, outputDir string) (Result, error) {
	schema := schemaFromConfig(instrument, cfg)

	records := make([]metadata.Record, 0, len(sources))
	for _, src := range sources {
		records = append(records, transformRecord(instrument, src, cfg, schema))
	}

	metaPath := filepath.Join(outputDir, instrument+metadataSuffix)
	if err := writeMetadataTable(metaPath, instrument, schema, records, cfg.Index); err != nil {
		return Result{}, err
	}

	segRows, centers, skipped := d.segmentAll(records, schema, cfg.Segmentation.Resolution)

	segPath := filepath.Join(outputDir, instrument+segmentSuffix)
	if err := writeSegmentTable(segPath, segRows); err != nil {
		return Result{}, err
	}

	treePath := filepath.Join(outputDir, instrument+segmentTreeSuffix)
	if len(centers) > 0 {
		if err := writeSegmentTree(treePath, centers, d.BodyRadiusM); err != nil {
			return Result{}, err
		}
	}

	return Result{
		RecordsStored:   len(records),
		SegmentsWritten: len(segRows),
		RecordsSkipped:  skipped,
	}, nil
}

func schemaFromConfig(instrument string, cfg *config.IngestConfig) metadata.Schema {
	cols := make([]metadata.ColumnDescriptor, len(cfg.Columns))
	for i, c := range cfg.Columns {
		cols[i] = metadata.ColumnDescriptor{
			SourceField: c.SourceField,
			StoredName:  c.StoredName,
			SQLType:     c.SQLType,
		}
	}
	return metadata.Schema{Instrument: instrument, Columns: cols}
}

// transformRecord applies the config's column rename and scale-factor
// mapping to one raw source row, producing a stored Record.
func transformRecord(instrument string, src SourceRecord, cfg *config.IngestConfig, schema metadata.Schema) metadata.Record {
	fields := make(map[string]metadata.Value, len(schema.Columns))
	for _, col := range schema.Columns {
		v, ok := src[col.SourceField]
		if !ok {
			continue
		}
		scale := cfg.ScaleFactor(col.SourceField)
		if scale != 1 {
			if f, isNum := v.Float(); isNum {
				v = metadata.RealValue(f * scale)
			}
		}
		fields[col.StoredName] = v
	}
	return metadata.NewRecord(instrument, fields)
}

func writeMetadataTable(path, instrument string, schema metadata.Schema, records []metadata.Record, index []string) error {
	w, err := store.CreateMetadataStore(path, instrument)
	if err != nil {
		return fmt.Errorf("ingest: opening metadata store: %w", err)
	}
	if err := w.Write(schema, records, index); err != nil {
		w.Close()
		return fmt.Errorf("ingest: writing metadata table: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ingest: closing metadata store: %w", err)
	}
	return nil
}

func (d *Driver) segmentAll(records []metadata.Record, schema metadata.Schema, resolutionM float64) ([]store.SegmentRow, []segtree.CenterInput, int) {
	idCol := schema.IDColumnName()

	var rows []store.SegmentRow
	var centers []segtree.CenterInput
	var nextID int64
	skipped := 0

	for _, rec := range records {
		observationID, _ := rec.ObservationID(idCol)

		loc, err := localize.Get(rec)
		if err != nil {
			log.Printf("ingest: skipping observation %q: %v", observationID, (&ErrSegmenterFailure{ObservationID: observationID, Err: err}).Error())
			skipped++
			continue
		}

		segments, err := triseg.Segment(loc, resolutionM, d.BodyRadiusM)
		if err != nil {
			log.Printf("ingest: skipping observation %q: %v", observationID, (&ErrSegmenterFailure{ObservationID: observationID, Err: err}).Error())
			skipped++
			continue
		}

		for _, seg := range segments {
			rows = append(rows, store.SegmentRow{
				SegmentID:     nextID,
				ObservationID: observationID,
				Lat0:          seg.Vertices[0].Lat, Lon0: seg.Vertices[0].Lon,
				Lat1: seg.Vertices[1].Lat, Lon1: seg.Vertices[1].Lon,
				Lat2: seg.Vertices[2].Lat, Lon2: seg.Vertices[2].Lon,
			})
			centers = append(centers, segtree.CenterInput{
				ID: nextID, Lat: seg.CenterLat, Lon: seg.CenterLon, RadiusM: seg.RadiusM,
			})
			nextID++
		}
	}

	return rows, centers, skipped
}

func writeSegmentTable(path string, rows []store.SegmentRow) error {
	w, err := store.CreateSegmentStore(path)
	if err != nil {
		return fmt.Errorf("ingest: opening segment store: %w", err)
	}
	if err := w.Write(rows); err != nil {
		w.Close()
		return fmt.Errorf("ingest: writing segment table: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ingest: closing segment store: %w", err)
	}
	return nil
}

func writeSegmentTree(path string, centers []segtree.CenterInput, bodyRadiusM float64) error {
	tree, err := segtree.Build(centers, bodyRadiusM)
	if err != nil {
		return fmt.Errorf("ingest: building segment tree: %w", err)
	}
	if err := tree.Save(path); err != nil {
		return fmt.Errorf("ingest: saving segment tree: %w", err)
	}
	return nil
}

// RepairIndex rebuilds only the segment-tree artifact from an existing
// segment table, without re-parsing metadata or re-running the
// segmenter. Used by the `repair-index` CLI subcommand when a tree
// artifact is lost or suspected corrupt but the segment table survives.
func RepairIndex(segmentDBPath, treeOutputPath string, bodyRadiusM float64) error {
	segStore, err := store.OpenSegmentStore(segmentDBPath)
	if err != nil {
		return fmt.Errorf("ingest: opening segment store for repair: %w", err)
	}
	defer segStore.Close()

	rows, err := allSegmentRows(segStore)
	if err != nil {
		return err
	}

	centers := make([]segtree.CenterInput, 0, len(rows))
	for _, r := range rows {
		tri, err := r.ToTriSegment(bodyRadiusM)
		if err != nil {
			log.Printf("ingest: repair-index: skipping segment %d: %v", r.SegmentID, err)
			continue
		}
		centers = append(centers, segtree.CenterInput{
			ID: r.SegmentID, Lat: tri.CenterLat, Lon: tri.CenterLon, RadiusM: tri.RadiusM,
		})
	}

	return writeSegmentTree(treeOutputPath, centers, bodyRadiusM)
}

// allSegmentRows enumerates every row in a segment table by scanning
// segment ids sequentially from zero until the first gap, since the
// segment store interface exposes no "list all" query and ids are
// assigned densely, in emission order, by Ingest.
func allSegmentRows(segStore store.SegmentStore) ([]store.SegmentRow, error) {
	var out []store.SegmentRow
	for id := int64(0); ; id++ {
		rows, err := segStore.QueryByIDs([]int64{id})
		if err != nil {
			return nil, fmt.Errorf("ingest: scanning segment table: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		out = append(out, rows[0])
	}
	return out, nil
}
