// Package query implements the read-side engine: metadata predicate
// queries, observation-id lookup, and the two spatial joins
// (point-in-observation, observation-vs-observation overlap) built on
// top of internal/segtree and internal/store.
package query

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jplmlia/pdsc/internal/metadata"
	"github.com/jplmlia/pdsc/internal/segtree"
	"github.com/jplmlia/pdsc/internal/store"
	"github.com/jplmlia/pdsc/internal/triseg"
)

// InstrumentHandle is everything the engine needs for one instrument:
// its metadata store, its segment store (nil if the instrument has no
// spatial index), the path to its segment-tree artifact, and its
// reference body radius.
type InstrumentHandle struct {
	Metadata        store.MetadataStore
	Segments        store.SegmentStore
	SegmentTreePath string
	BodyRadiusM     float64
	IDColumn        string
}

type instrumentState struct {
	handle   InstrumentHandle
	treeOnce sync.Once
	tree     *segtree.Tree
	treeErr  error
}

// Engine is a stateless-between-calls query façade over a fixed set of
// instruments, configured once at startup. Segment trees are loaded
// lazily on first spatial query and then held immutably for the
// process lifetime (rtreego trees are read-only after construction and
// safe for concurrent readers).
type Engine struct {
	instruments map[string]*instrumentState
}

// NewEngine builds an Engine over the given per-instrument handles.
func NewEngine(handles map[string]InstrumentHandle) *Engine {
	instruments := make(map[string]*instrumentState, len(handles))
	for name, h := range handles {
		instruments[name] = &instrumentState{handle: h}
	}
	return &Engine{instruments: instruments}
}

func (e *Engine) lookup(instrument string) (*instrumentState, error) {
	st, ok := e.instruments[instrument]
	if !ok {
		return nil, &ErrUnknownInstrument{Instrument: instrument}
	}
	return st, nil
}

// Query returns every metadata record for instrument satisfying the
// conjunction of conditions.
func (e *Engine) Query(instrument string, conditions []store.Condition) ([]metadata.Record, error) {
	st, err := e.lookup(instrument)
	if err != nil {
		return nil, err
	}
	return st.handle.Metadata.Query(conditions)
}

// QueryByObservationID returns every metadata record for instrument
// whose observation id matches any of observationIDs.
func (e *Engine) QueryByObservationID(instrument string, observationIDs []string) ([]metadata.Record, error) {
	st, err := e.lookup(instrument)
	if err != nil {
		return nil, err
	}
	idCol := st.handle.IDColumn
	if idCol == "" {
		idCol = "observation_id"
	}
	return st.handle.Metadata.QueryByObservationID(idCol, observationIDs)
}

func (e *Engine) segmentTree(instrument string) (*instrumentState, *segtree.Tree, error) {
	st, err := e.lookup(instrument)
	if err != nil {
		return nil, nil, err
	}
	if st.handle.Segments == nil || st.handle.SegmentTreePath == "" {
		return nil, nil, &ErrNoSpatialIndex{Instrument: instrument}
	}
	st.treeOnce.Do(func() {
		st.tree, st.treeErr = segtree.Load(st.handle.SegmentTreePath)
	})
	if st.treeErr != nil {
		return nil, nil, fmt.Errorf("query: loading segment tree for %q: %w", instrument, st.treeErr)
	}
	return st, st.tree, nil
}

// FindObservationsOfLatLon returns the sorted, deduplicated set of
// observation ids from instrument whose footprint includes the given
// location within radiusM.
func (e *Engine) FindObservationsOfLatLon(instrument string, lat, lon, radiusM float64) ([]string, error) {
	st, tree, err := e.segmentTree(instrument)
	if err != nil {
		return nil, err
	}

	q, err := triseg.NewPointQuery(lat, lon, radiusM)
	if err != nil {
		return nil, fmt.Errorf("query: invalid point query: %w", err)
	}

	candidateIDs := tree.QueryPoint(q)
	rows, err := st.handle.Segments.QueryByIDs(candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("query: fetching candidate segments: %w", err)
	}

	overlapping := make(map[string]bool)
	for _, row := range rows {
		if overlapping[row.ObservationID] {
			continue
		}
		seg, err := row.ToTriSegment(st.handle.BodyRadiusM)
		if err != nil {
			continue
		}
		if seg.IncludesPoint(q) {
			overlapping[row.ObservationID] = true
		}
	}
	return sortedKeys(overlapping), nil
}

// FindOverlappingObservations returns the sorted, deduplicated set of
// observation ids from otherInstrument whose footprint overlaps the
// footprint of observationID from instrument.
func (e *Engine) FindOverlappingObservations(instrument, observationID, otherInstrument string) ([]string, error) {
	srcSt, err := e.lookup(instrument)
	if err != nil {
		return nil, err
	}
	if srcSt.handle.Segments == nil {
		return nil, &ErrNoSpatialIndex{Instrument: instrument}
	}
	dstSt, dstTree, err := e.segmentTree(otherInstrument)
	if err != nil {
		return nil, err
	}

	sourceRows, err := srcSt.handle.Segments.QueryByObservationID(observationID)
	if err != nil {
		return nil, fmt.Errorf("query: fetching segments for %q: %w", observationID, err)
	}

	overlapping := make(map[string]bool)
	for _, row := range sourceRows {
		seg, err := row.ToTriSegment(srcSt.handle.BodyRadiusM)
		if err != nil {
			continue
		}

		candidateIDs := dstTree.QuerySegment(seg)
		candidateRows, err := dstSt.handle.Segments.QueryByIDs(candidateIDs)
		if err != nil {
			return nil, fmt.Errorf("query: fetching candidate segments: %w", err)
		}
		for _, other := range candidateRows {
			if overlapping[other.ObservationID] {
				continue
			}
			otherSeg, err := other.ToTriSegment(dstSt.handle.BodyRadiusM)
			if err != nil {
				continue
			}
			if seg.OverlapsSegment(otherSeg) {
				overlapping[other.ObservationID] = true
			}
		}
	}
	return sortedKeys(overlapping), nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
