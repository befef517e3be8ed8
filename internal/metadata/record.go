// Package metadata implements the tagged-value observation-metadata record
// used by the segmenter, the query engine, and the SQLite-backed stores.
//
// The original system carried metadata as a dynamically-typed dict; this
// package replaces that with an explicit sum type (Kind + typed fields) and
// a per-instrument Schema describing the stored columns, per the registry
// and typing redesign this module follows throughout.
package metadata

import (
	"fmt"
	"sort"
	"time"
)

// Kind discriminates the payload carried by a Value.
type Kind int

const (
	KindInt Kind = iota
	KindReal
	KindText
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a tagged union over the field types a metadata record can hold.
// Exactly the field named by Kind is meaningful.
type Value struct {
	Kind      Kind
	Int       int64
	Real      float64
	Text      string
	Timestamp time.Time
}

// IntValue constructs an integer-valued Value.
func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }

// RealValue constructs a real-valued Value.
func RealValue(v float64) Value { return Value{Kind: KindReal, Real: v} }

// TextValue constructs a text-valued Value.
func TextValue(v string) Value { return Value{Kind: KindText, Text: v} }

// TimestampValue constructs a timestamp-valued Value.
func TimestampValue(v time.Time) Value { return Value{Kind: KindTimestamp, Timestamp: v} }

// Equal reports whether v and o carry the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindReal:
		return v.Real == o.Real
	case KindText:
		return v.Text == o.Text
	case KindTimestamp:
		return v.Timestamp.Equal(o.Timestamp)
	default:
		return false
	}
}

// Float reports v's payload as a float64, accepting both KindInt and
// KindReal (most geometric and localizer code wants the latter regardless
// of how the column was declared).
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindReal:
		return v.Real, true
	case KindInt:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// Record is an immutable, structurally-equal-comparable observation
// metadata row: an instrument tag plus a named field set.
type Record struct {
	Instrument string
	Fields     map[string]Value
}

// NewRecord builds a Record over a copy of fields, so the caller's map may
// be mutated afterward without affecting the Record.
func NewRecord(instrument string, fields map[string]Value) Record {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{Instrument: instrument, Fields: cp}
}

// Get returns the named field and whether it is present.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Float returns the named field coerced to float64.
func (r Record) Float(name string) (float64, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Text returns the named field as text.
func (r Record) Text(name string) (string, bool) {
	v, ok := r.Fields[name]
	if !ok || v.Kind != KindText {
		return "", false
	}
	return v.Text, true
}

// ObservationID returns the record's primary key field, which by
// convention is named "observation_id" unless the instrument's
// configuration substitutes another field name.
func (r Record) ObservationID(idField string) (string, bool) {
	if idField == "" {
		idField = "observation_id"
	}
	return r.Text(idField)
}

// Equal reports whether r and o have the same instrument tag and an
// identical field set (structural equality).
func (r Record) Equal(o Record) bool {
	if r.Instrument != o.Instrument {
		return false
	}
	if len(r.Fields) != len(o.Fields) {
		return false
	}
	for k, v := range r.Fields {
		ov, ok := o.Fields[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// FieldNames returns the record's field names, sorted, for stable display
// and iteration in tests and logs.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ColumnDescriptor maps a parsed source field to a stored column name and
// SQL storage type.
type ColumnDescriptor struct {
	SourceField string
	StoredName  string
	SQLType     string // "INTEGER", "REAL", "TEXT", "TIMESTAMP"
}

// Schema describes the stored columns of one instrument's metadata table.
type Schema struct {
	Instrument string
	IDColumn   string // defaults to "observation_id" when empty
	Columns    []ColumnDescriptor
}

// IDColumnName returns the schema's primary-key column name, defaulting to
// "observation_id".
func (s Schema) IDColumnName() string {
	if s.IDColumn == "" {
		return "observation_id"
	}
	return s.IDColumn
}
