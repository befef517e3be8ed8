package triseg

import (
	"fmt"
	"math"

	"github.com/jplmlia/pdsc/internal/localize"
)

// Segment drives loc over an evenly spaced pixel grid sized from the
// observation's physical extent and the requested resolution, and emits
// two CCW triangles per grid cell, winding order chosen by the
// localizer's flight direction.
//
// A localizer error at any grid point aborts the whole segmentation: per
// this module's ingestion contract, a partially segmented footprint is
// never persisted; the caller (the ingestion driver) is responsible for
// skipping the whole record on error.
func Segment(loc localize.Localizer, resolutionM, bodyRadiusM float64) ([]*TriSegment, error) {
	width := loc.ObservationWidthM()
	length := loc.ObservationLengthM()

	nCols := int(math.Ceil(width / resolutionM))
	nRows := int(math.Ceil(length / resolutionM))
	if nCols < 1 {
		nCols = 1
	}
	if nRows < 1 {
		nRows = 1
	}

	var rowMax, colMax float64
	if loc.NormalizedPixelSpace() {
		rowMax, colMax = 1, 1
	} else {
		rowMax = float64(loc.Rows())
		colMax = float64(loc.Cols())
	}

	rowIdx := linspace(0, rowMax, nRows+1)
	colIdx := linspace(0, colMax, nCols+1)

	grid := make([][]LatLon, nRows+1)
	for r := 0; r <= nRows; r++ {
		grid[r] = make([]LatLon, nCols+1)
		for c := 0; c <= nCols; c++ {
			lat, lon, err := loc.PixelToLatLon(rowIdx[r], colIdx[c])
			if err != nil {
				return nil, fmt.Errorf("triseg: localizer failed at grid point (row=%v,col=%v): %w", rowIdx[r], colIdx[c], err)
			}
			grid[r][c] = LatLon{Lat: lat, Lon: lon}
		}
	}

	segments := make([]*TriSegment, 0, 2*nRows*nCols)
	flightDir := loc.FlightDirection()

	for r := 0; r < nRows; r++ {
		for c := 0; c < nCols; c++ {
			var tri1, tri2 *TriSegment
			var err error
			if flightDir > 0 {
				tri1, err = New(grid[r][c], grid[r][c+1], grid[r+1][c], bodyRadiusM)
				if err == nil {
					tri2, err = New(grid[r+1][c+1], grid[r+1][c], grid[r][c+1], bodyRadiusM)
				}
			} else {
				tri1, err = New(grid[r][c], grid[r+1][c], grid[r][c+1], bodyRadiusM)
				if err == nil {
					tri2, err = New(grid[r+1][c+1], grid[r][c+1], grid[r+1][c], bodyRadiusM)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("triseg: segmenting cell (r=%d,c=%d): %w", r, c, err)
			}
			segments = append(segments, tri1, tri2)
		}
	}

	return segments, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = lo + step*float64(i)
	}
	return out
}
