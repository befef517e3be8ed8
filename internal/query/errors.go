package query

import "fmt"

// ErrUnknownInstrument indicates a query against an instrument the
// engine was not configured with.
type ErrUnknownInstrument struct {
	Instrument string
}

func (e *ErrUnknownInstrument) Error() string {
	return fmt.Sprintf("unknown instrument %q", e.Instrument)
}

// ErrNoSpatialIndex indicates a spatial query against an instrument that
// has metadata but no segment tree artifact (the localizer and
// segmenter never ran successfully for it).
type ErrNoSpatialIndex struct {
	Instrument string
}

func (e *ErrNoSpatialIndex) Error() string {
	return fmt.Sprintf("no spatial index available for instrument %q", e.Instrument)
}
