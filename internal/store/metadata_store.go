package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jplmlia/pdsc/internal/metadata"
)

// MetadataStore is the narrow persistence interface the query engine and
// ingestion driver depend on for one instrument's metadata table.
type MetadataStore interface {
	Query(conditions []Condition) ([]metadata.Record, error)
	QueryByObservationID(idColumn string, observationIDs []string) ([]metadata.Record, error)
	Close() error
}

// MetadataWriter additionally supports (re-)creating and populating the
// metadata table; only the ingestion driver needs this half of the
// interface.
type MetadataWriter interface {
	MetadataStore
	Write(schema metadata.Schema, records []metadata.Record, index []string) error
}

// SQLiteMetadataStore is a MetadataWriter backed by a SQLite database
// file, one file per instrument (`<instrument>_metadata.db`).
type SQLiteMetadataStore struct {
	db         *sql.DB
	instrument string
	schema     metadata.Schema

	// finalPath and tmpPath are set only when this store was created via
	// CreateMetadataStore: the database is built at tmpPath and Close
	// renames it into finalPath once Write has succeeded, so concurrent
	// readers of finalPath never observe a partial table.
	finalPath string
	tmpPath   string
	written   bool
}

// OpenMetadataStore opens (without creating) an existing metadata
// database for read access, inferring its column schema from the
// database itself.
func OpenMetadataStore(path, instrument string) (*SQLiteMetadataStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &ErrIoError{Op: "open metadata store " + path, Err: err}
	}
	schema, err := inferSchema(db, instrument)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteMetadataStore{db: db, instrument: instrument, schema: schema}, nil
}

// CreateMetadataStore creates the metadata database for instrument,
// ready for Write. It is built at a temporary path alongside path and
// only replaces path atomically when Close is called after a successful
// Write, so a crash or concurrent reader mid-write never observes a
// dropped or partial table.
func CreateMetadataStore(path, instrument string) (*SQLiteMetadataStore, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, &ErrIoError{Op: "create temp metadata store for " + path, Err: err}
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, &ErrIoError{Op: "close temp metadata store for " + path, Err: err}
	}

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, &ErrIoError{Op: "create metadata store " + path, Err: err}
	}
	return &SQLiteMetadataStore{db: db, instrument: instrument, finalPath: path, tmpPath: tmpPath}, nil
}

func inferSchema(db *sql.DB, instrument string) (metadata.Schema, error) {
	rows, err := db.Query(`SELECT name, type FROM pragma_table_info('metadata')`)
	if err != nil {
		return metadata.Schema{}, &ErrIoError{Op: "inspect metadata table", Err: err}
	}
	defer rows.Close()

	var cols []metadata.ColumnDescriptor
	for rows.Next() {
		var name, sqlType string
		if err := rows.Scan(&name, &sqlType); err != nil {
			return metadata.Schema{}, &ErrIoError{Op: "scan table_info row", Err: err}
		}
		cols = append(cols, metadata.ColumnDescriptor{StoredName: name, SQLType: sqlType})
	}
	if err := rows.Err(); err != nil {
		return metadata.Schema{}, &ErrIoError{Op: "iterate table_info", Err: err}
	}
	return metadata.Schema{Instrument: instrument, Columns: cols}, nil
}

// Write drops and recreates the metadata table from schema, builds the
// requested secondary indices, and inserts every record.
func (s *SQLiteMetadataStore) Write(schema metadata.Schema, records []metadata.Record, index []string) error {
	s.schema = schema

	ddl := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		ddl[i] = fmt.Sprintf("%s %s", c.StoredName, sqlDeclType(c.SQLType))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &ErrIoError{Op: "begin metadata write transaction", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS metadata`); err != nil {
		return &ErrIoError{Op: "drop metadata table", Err: err}
	}
	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE metadata (%s)", strings.Join(ddl, ", "))); err != nil {
		return &ErrIoError{Op: "create metadata table", Err: err}
	}
	for _, col := range index {
		stmt := fmt.Sprintf("CREATE INDEX %s_index ON metadata (%s)", col, col)
		if _, err := tx.Exec(stmt); err != nil {
			return &ErrIoError{Op: "create index on " + col, Err: err}
		}
	}

	placeholders := make([]string, len(schema.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO metadata VALUES (%s)", strings.Join(placeholders, ", "))

	for _, rec := range records {
		args := make([]any, len(schema.Columns))
		for i, c := range schema.Columns {
			v, ok := rec.Get(c.StoredName)
			if !ok {
				args[i] = nil
				continue
			}
			args[i] = valueToSQL(v)
		}
		if _, err := tx.Exec(insert, args...); err != nil {
			return &ErrIoError{Op: "insert metadata row", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ErrIoError{Op: "commit metadata write", Err: err}
	}
	s.written = true
	return nil
}

// Query runs a conjunction of conditions against the metadata table.
func (s *SQLiteMetadataStore) Query(conditions []Condition) ([]metadata.Record, error) {
	if err := validateConditions(conditions); err != nil {
		return nil, err
	}

	query := "SELECT * FROM metadata"
	args := make([]any, 0, len(conditions))
	if len(conditions) > 0 {
		parts := make([]string, len(conditions))
		for i, c := range conditions {
			parts[i] = fmt.Sprintf("%s%s?", c.Column, c.Comparator)
			args = append(args, c.Value)
		}
		query += " WHERE " + strings.Join(parts, " AND ")
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &ErrIoError{Op: "query metadata", Err: err}
	}
	defer rows.Close()
	return scanMetadataRows(rows, s.instrument)
}

// QueryByObservationID returns the union of rows matching any of
// observationIDs, deduplicated and sorted by the underlying SQL engine's
// natural row order per id.
func (s *SQLiteMetadataStore) QueryByObservationID(idColumn string, observationIDs []string) ([]metadata.Record, error) {
	if idColumn == "" {
		idColumn = "observation_id"
	}

	seen := make(map[string]bool)
	var out []metadata.Record
	for _, oid := range observationIDs {
		rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM metadata WHERE %s=?", idColumn), oid)
		if err != nil {
			return nil, &ErrIoError{Op: "query metadata by observation id", Err: err}
		}
		recs, err := scanMetadataRows(rows, s.instrument)
		rows.Close()
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			key := recordKey(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out, nil
}

func recordKey(r metadata.Record) string {
	// Field order is stable via FieldNames; this key need only be unique
	// per distinct row, not human-readable.
	var b strings.Builder
	for _, name := range r.FieldNames() {
		v, _ := r.Get(name)
		fmt.Fprintf(&b, "%s=%v;", name, v)
	}
	return b.String()
}

// Close releases the underlying database connection. For a store
// created via CreateMetadataStore, it also exposes the database at its
// final path: atomically, by rename, if Write succeeded; otherwise it
// discards the temporary file and leaves any prior artifact at that
// path untouched.
func (s *SQLiteMetadataStore) Close() error {
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
		return &ErrIoError{Op: "rename metadata store into place " + s.finalPath, Err: err}
	}
	return nil
}

func scanMetadataRows(rows *sql.Rows, instrument string) ([]metadata.Record, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, &ErrIoError{Op: "read metadata column types", Err: err}
	}

	var out []metadata.Record
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ErrIoError{Op: "scan metadata row", Err: err}
		}

		fields := make(map[string]metadata.Value, len(cols))
		for i, c := range cols {
			fields[c.Name()] = sqlToValue(c.DatabaseTypeName(), raw[i])
		}
		out = append(out, metadata.NewRecord(instrument, fields))
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrIoError{Op: "iterate metadata rows", Err: err}
	}
	return out, nil
}

func sqlDeclType(t string) string {
	switch strings.ToUpper(t) {
	case "INTEGER", "INT":
		return "INTEGER"
	case "REAL", "FLOAT", "DOUBLE":
		return "REAL"
	case "TIMESTAMP", "DATETIME":
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func valueToSQL(v metadata.Value) any {
	switch v.Kind {
	case metadata.KindInt:
		return v.Int
	case metadata.KindReal:
		return v.Real
	case metadata.KindTimestamp:
		return v.Timestamp.Format(metadata.TimeFormat)
	default:
		return v.Text
	}
}

func sqlToValue(sqlType string, raw any) metadata.Value {
	switch strings.ToUpper(sqlType) {
	case "INTEGER", "INT":
		switch n := raw.(type) {
		case int64:
			return metadata.IntValue(n)
		default:
			return metadata.IntValue(0)
		}
	case "REAL", "FLOAT", "DOUBLE":
		switch n := raw.(type) {
		case float64:
			return metadata.RealValue(n)
		case int64:
			return metadata.RealValue(float64(n))
		default:
			return metadata.RealValue(0)
		}
	case "TIMESTAMP", "DATETIME":
		switch s := raw.(type) {
		case string:
			if t, err := time.Parse(metadata.TimeFormat, s); err == nil {
				return metadata.TimestampValue(t)
			}
		case time.Time:
			return metadata.TimestampValue(s)
		}
		return metadata.TimestampValue(time.Time{})
	default:
		switch s := raw.(type) {
		case string:
			return metadata.TextValue(s)
		case []byte:
			return metadata.TextValue(string(s))
		default:
			return metadata.TextValue(fmt.Sprintf("%v", raw))
		}
	}
}
