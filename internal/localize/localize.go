// Package localize implements the per-instrument pixel <-> (lat, lon)
// mapping strategies and the registry that selects one by instrument tag.
//
// This follows the capability-set redesign in place of an abstract base
// class: any type implementing Localizer is a localizer, and the four
// variants (geodesic, four-corner, map-projected, browse) are plain
// structs satisfying the interface rather than subclasses of a common
// base.
package localize

import (
	"sync"

	"github.com/jplmlia/pdsc/internal/metadata"
)

// Localizer is the common bidirectional pixel <-> lat/lon mapping contract
// shared by every variant in this package.
type Localizer interface {
	// PixelToLatLon maps a (row, col) pixel coordinate to (lat, lon) degrees.
	PixelToLatLon(row, col float64) (lat, lon float64, err error)

	// LatLonToPixel maps (lat, lon) degrees back to a (row, col) pixel
	// coordinate, either analytically or by numerical minimization.
	LatLonToPixel(lat, lon float64) (row, col float64, err error)

	// ObservationWidthM and ObservationLengthM report the observation's
	// physical extent in metres, used to size the footprint segmenter's grid.
	ObservationWidthM() float64
	ObservationLengthM() float64

	// NormalizedPixelSpace reports whether pixel coordinates range over
	// [0,1]^2 (true) rather than [0,rows]x[0,cols] (false, the default).
	NormalizedPixelSpace() bool

	// FlightDirection reports +1 or -1, the sense the footprint segmenter
	// uses to choose CCW triangle winding over the pixel grid.
	FlightDirection() int

	// Rows and Cols report the pixel grid's dimensions, over which the
	// footprint segmenter builds its grid (ignored when
	// NormalizedPixelSpace is true, where the grid spans [0,1]^2).
	Rows() int
	Cols() int
}

// MarsRadiusM is the default reference body radius (metres), per
// https://tharsis.gsfc.nasa.gov/geodesy.html.
const MarsRadiusM = 3396200.0

// MarsFlattening is the default reference body flattening.
const MarsFlattening = 1.0 / 169.8

// DefaultResolutionM is the default convergence tolerance, in metres, for
// the numerical pixel<->latlon inverse.
const DefaultResolutionM = 0.1

// Constructor builds a Localizer from an instrument's metadata record.
type Constructor func(metadata.Record) (Localizer, error)

var (
	registryMu    sync.RWMutex
	registry      = map[string]Constructor{}
	registryFirst bool // true once any lookup has happened
)

// Register installs the constructor for an instrument tag. Per the
// global-mutable-registry redesign, registration is expected to happen
// once at process start (by main or by test setup); once the registry has
// served its first lookup, further registrations are rejected so that a
// racing registration can never change behavior underneath a running
// query engine.
func Register(instrument string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registryFirst {
		panic("localize: Register(" + instrument + ") called after the registry has served a lookup")
	}
	registry[instrument] = ctor
}

// Get builds a Localizer for the given metadata record using the
// constructor registered for its instrument tag. Unknown instrument
// returns ErrNoLocalizer.
func Get(m metadata.Record) (Localizer, error) {
	registryMu.Lock()
	registryFirst = true
	ctor, ok := registry[m.Instrument]
	registryMu.Unlock()
	if !ok {
		return nil, &ErrNoLocalizer{Instrument: m.Instrument}
	}
	return ctor(m)
}

// Registered reports whether an instrument tag currently has a
// constructor, without freezing the registry (used by tests and
// diagnostics that must not block later registration).
func Registered(instrument string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[instrument]
	return ok
}
