package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jplmlia/pdsc/internal/triseg"
)

// SegmentRow is one row of the segment table: a segment id, its parent
// observation id, and the three CCW vertices (degrees) it was stored
// with.
type SegmentRow struct {
	SegmentID     int64
	ObservationID string
	Lat0, Lon0    float64
	Lat1, Lon1    float64
	Lat2, Lon2    float64
}

// ToTriSegment reconstructs the geometric TriSegment this row was
// derived from, given the reference body radius (not itself part of the
// segment table, since it is constant per instrument).
func (r SegmentRow) ToTriSegment(bodyRadiusM float64) (*triseg.TriSegment, error) {
	return triseg.New(
		triseg.LatLon{Lat: r.Lat0, Lon: r.Lon0},
		triseg.LatLon{Lat: r.Lat1, Lon: r.Lon1},
		triseg.LatLon{Lat: r.Lat2, Lon: r.Lon2},
		bodyRadiusM,
	)
}

// SegmentStore is the narrow persistence interface over one instrument's
// segment table (`<instrument>_segments.db`).
type SegmentStore interface {
	QueryByIDs(ids []int64) ([]SegmentRow, error)
	QueryByObservationID(observationID string) ([]SegmentRow, error)
	Close() error
}

// SegmentWriter additionally supports (re-)creating and populating the
// segment table; only the ingestion driver needs this half of the
// interface.
type SegmentWriter interface {
	SegmentStore
	Write(rows []SegmentRow) error
}

// SQLiteSegmentStore is a SegmentWriter backed by a SQLite database file.
type SQLiteSegmentStore struct {
	db *sql.DB

	// finalPath and tmpPath are set only when this store was created via
	// CreateSegmentStore: the database is built at tmpPath and Close
	// renames it into finalPath once Write has succeeded, so concurrent
	// readers of finalPath never observe a partial table.
	finalPath string
	tmpPath   string
	written   bool
}

// OpenSegmentStore opens an existing segment database for read access.
func OpenSegmentStore(path string) (*SQLiteSegmentStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &ErrIoError{Op: "open segment store " + path, Err: err}
	}
	return &SQLiteSegmentStore{db: db}, nil
}

// CreateSegmentStore creates the segment database at path, built at a
// temporary path alongside it. Close renames it into place atomically
// once Write has succeeded, so a crash or concurrent reader mid-write
// never observes a dropped or partial table.
func CreateSegmentStore(path string) (*SQLiteSegmentStore, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, &ErrIoError{Op: "create temp segment store for " + path, Err: err}
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, &ErrIoError{Op: "close temp segment store for " + path, Err: err}
	}

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, &ErrIoError{Op: "create segment store " + path, Err: err}
	}
	return &SQLiteSegmentStore{db: db, finalPath: path, tmpPath: tmpPath}, nil
}

const segmentTableDDL = `CREATE TABLE segments (
	segment_id INTEGER PRIMARY KEY,
	observation_id TEXT,
	lat0 REAL, lon0 REAL,
	lat1 REAL, lon1 REAL,
	lat2 REAL, lon2 REAL
)`

// Write drops and recreates the segment table and inserts every row.
func (s *SQLiteSegmentStore) Write(rows []SegmentRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &ErrIoError{Op: "begin segment write transaction", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS segments`); err != nil {
		return &ErrIoError{Op: "drop segments table", Err: err}
	}
	if _, err := tx.Exec(segmentTableDDL); err != nil {
		return &ErrIoError{Op: "create segments table", Err: err}
	}
	if _, err := tx.Exec(`CREATE INDEX segment_index ON segments (segment_id)`); err != nil {
		return &ErrIoError{Op: "create segment_index", Err: err}
	}
	if _, err := tx.Exec(`CREATE INDEX observation_index ON segments (observation_id)`); err != nil {
		return &ErrIoError{Op: "create observation_index", Err: err}
	}

	insert := `INSERT INTO segments VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, r := range rows {
		if _, err := tx.Exec(insert, r.SegmentID, r.ObservationID,
			r.Lat0, r.Lon0, r.Lat1, r.Lon1, r.Lat2, r.Lon2); err != nil {
			return &ErrIoError{Op: "insert segment row", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ErrIoError{Op: "commit segment write", Err: err}
	}
	s.written = true
	return nil
}

// QueryByIDs fetches the segment rows for the given ids. An id with no
// matching row is silently omitted: callers query ids returned by the
// segment tree, which is built from the same table, so a miss indicates
// the two have drifted out of sync rather than a normal empty result.
func (s *SQLiteSegmentStore) QueryByIDs(ids []int64) ([]SegmentRow, error) {
	out := make([]SegmentRow, 0, len(ids))
	for _, id := range ids {
		row := s.db.QueryRow(`SELECT * FROM segments WHERE segment_id=?`, id)
		r, err := scanSegmentRow(row)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, &ErrIoError{Op: "query segment by id", Err: err}
		}
		out = append(out, r)
	}
	return out, nil
}

// QueryByObservationID fetches every segment belonging to one
// observation.
func (s *SQLiteSegmentStore) QueryByObservationID(observationID string) ([]SegmentRow, error) {
	rows, err := s.db.Query(`SELECT * FROM segments WHERE observation_id=?`, observationID)
	if err != nil {
		return nil, &ErrIoError{Op: "query segments by observation id", Err: err}
	}
	defer rows.Close()

	var out []SegmentRow
	for rows.Next() {
		var r SegmentRow
		if err := rows.Scan(&r.SegmentID, &r.ObservationID,
			&r.Lat0, &r.Lon0, &r.Lat1, &r.Lon1, &r.Lat2, &r.Lon2); err != nil {
			return nil, &ErrIoError{Op: "scan segment row", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrIoError{Op: "iterate segment rows", Err: err}
	}
	return out, nil
}

// Close releases the underlying database connection. For a store
// created via CreateSegmentStore, it also exposes the database at its
// final path: atomically, by rename, if Write succeeded; otherwise it
// discards the temporary file and leaves any prior artifact at that
// path untouched.
func (s *SQLiteSegmentStore) Close() error {
	closeErr := s.db.Close()
	if s.tmpPath == "" {
		return closeErr
	}
	if closeErr != nil {
		os.Remove(s.tmpPath)
		return closeErr
	}
	if !s.written {
		os.Remove(s.tmpPath)
		return nil
	}
	if err := os.Rename(s.tmpPath, s.finalPath); err != nil {
		return &ErrIoError{Op: "rename segment store into place " + s.finalPath, Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSegmentRow(row rowScanner) (SegmentRow, error) {
	var r SegmentRow
	err := row.Scan(&r.SegmentID, &r.ObservationID,
		&r.Lat0, &r.Lon0, &r.Lat1, &r.Lon1, &r.Lat2, &r.Lon2)
	if err != nil {
		return SegmentRow{}, err
	}
	return r, nil
}
