package localize

import (
	"github.com/jplmlia/pdsc/internal/sphere"
)

// GeodesicParams are the construction parameters for a GeodesicLocalizer:
// an observation center pixel and lat/lon, its pixel grid size and pitch,
// the north azimuth at the center, and the flight direction sign.
type GeodesicParams struct {
	CenterRow, CenterCol float64
	CenterLat, CenterLon float64
	Rows, Cols           int
	PixelHeightM         float64
	PixelWidthM          float64
	NorthAzimuthDeg      float64
	FlightDirection      int // +1 or -1

	BodyRadiusM float64
	Flattening  float64 // 0 selects the spherical specialization
}

// GeodesicLocalizer maps pixels to lat/lon by stepping along the flight
// geodesic and then perpendicular to it, using the forward geodesic
// problem on a configurable body.
type GeodesicLocalizer struct {
	p      GeodesicParams
	width  float64
	height float64
}

// NewGeodesicLocalizer validates p and builds a GeodesicLocalizer.
func NewGeodesicLocalizer(p GeodesicParams) (*GeodesicLocalizer, error) {
	if p.Rows <= 0 {
		return nil, &ErrInvalidParameters{Reason: "no image rows"}
	}
	if p.Cols <= 0 {
		return nil, &ErrInvalidParameters{Reason: "no image columns"}
	}
	if p.PixelHeightM <= 0 {
		return nil, &ErrInvalidParameters{Reason: "non-positive pixel height"}
	}
	if p.PixelWidthM <= 0 {
		return nil, &ErrInvalidParameters{Reason: "non-positive pixel width"}
	}
	if p.FlightDirection == 0 {
		p.FlightDirection = 1
	}
	if p.BodyRadiusM <= 0 {
		p.BodyRadiusM = MarsRadiusM
	}
	return &GeodesicLocalizer{
		p:      p,
		width:  p.PixelWidthM * float64(p.Cols),
		height: p.PixelHeightM * float64(p.Rows),
	}, nil
}

// PixelToLatLon steps from the observation center along the flight
// geodesic by the row offset, then perpendicular to that geodesic by the
// column offset.
func (g *GeodesicLocalizer) PixelToLatLon(row, col float64) (float64, float64, error) {
	p := g.p
	xM := (col - p.CenterCol) * p.PixelWidthM
	yM := (row - p.CenterRow) * p.PixelHeightM * float64(p.FlightDirection)

	flightLine, err := sphere.ForwardGeodesic(p.CenterLat, p.CenterLon, 90-p.NorthAzimuthDeg, yM, p.BodyRadiusM, p.Flattening)
	if err != nil {
		return 0, 0, err
	}

	crossLine, err := sphere.ForwardGeodesic(flightLine.Lat, flightLine.Lon, flightLine.Azimuth+90, xM, p.BodyRadiusM, p.Flattening)
	if err != nil {
		return 0, 0, err
	}

	return crossLine.Lat, crossLine.Lon, nil
}

// LatLonToPixel inverts PixelToLatLon by numerical minimization.
func (g *GeodesicLocalizer) LatLonToPixel(lat, lon float64) (float64, float64, error) {
	return invertByMinimization(g, lat, lon, g.p.BodyRadiusM, DefaultResolutionM)
}

// ObservationWidthM reports the observation's column-direction extent in metres.
func (g *GeodesicLocalizer) ObservationWidthM() float64 { return g.width }

// ObservationLengthM reports the observation's row-direction extent in metres.
func (g *GeodesicLocalizer) ObservationLengthM() float64 { return g.height }

// NormalizedPixelSpace reports false: geodesic localizers operate over the
// pixel domain [0,rows]x[0,cols].
func (g *GeodesicLocalizer) NormalizedPixelSpace() bool { return false }

// FlightDirection reports the configured flight direction sign, needed by
// the footprint segmenter to pick triangle winding order.
func (g *GeodesicLocalizer) FlightDirection() int { return g.p.FlightDirection }

// Rows and Cols report the pixel grid dimensions.
func (g *GeodesicLocalizer) Rows() int { return g.p.Rows }
func (g *GeodesicLocalizer) Cols() int { return g.p.Cols }
