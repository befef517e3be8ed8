package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jplmlia/pdsc/internal/ingest"
	"github.com/jplmlia/pdsc/internal/metadata"
)

// readCSVSource reads a CSV-backed stand-in for a parsed PDS cumulative
// index table: the header row gives source field names (matching the
// `source_field` entries an instrument's YAML config expects), and every
// other row is one observation. A field that parses as a float64 is
// stored as a real value; everything else is stored as text, leaving
// column-mapping and unit rescaling to the ingestion driver.
//
// This stands in for the real PDS label/table parser, which this module
// treats as an external collaborator (see the instrument YAML configs'
// `columns` mapping for how raw fields become stored columns).
func readCSVSource(path string) ([]ingest.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV source %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header from %q: %w", path, err)
	}

	var records []ingest.SourceRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row from %q: %w", path, err)
		}
		rec := make(ingest.SourceRecord, len(header))
		for i, name := range header {
			if i >= len(row) {
				continue
			}
			rec[name] = parseCSVField(row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCSVField(raw string) metadata.Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return metadata.RealValue(f)
	}
	return metadata.TextValue(raw)
}
