package ingest

import "fmt"

// ErrSegmenterFailure wraps a localizer or segmenter error encountered
// while segmenting one record during ingestion. The ingestion driver
// catches this error kind and skips the record rather than aborting the
// whole run.
type ErrSegmenterFailure struct {
	ObservationID string
	Err           error
}

func (e *ErrSegmenterFailure) Error() string {
	return fmt.Sprintf("segmentation failed for observation %q: %v", e.ObservationID, e.Err)
}

func (e *ErrSegmenterFailure) Unwrap() error { return e.Err }
