package localize

import (
	"github.com/jplmlia/pdsc/internal/sphere"
)

// FourCornerParams are the four corner lat/lon pairs (in the fixed order
// top-left, bottom-left, bottom-right, top-right) and the observation's
// pixel grid dimensions.
type FourCornerParams struct {
	TopLeftLat, TopLeftLon         float64
	BottomLeftLat, BottomLeftLon   float64
	BottomRightLat, BottomRightLon float64
	TopRightLat, TopRightLon       float64
	Rows, Cols                     int

	BodyRadiusM float64
}

// FourCornerLocalizer maps pixels to lat/lon by bilinear interpolation of
// the four corners' unit vectors, renormalized to the sphere.
type FourCornerLocalizer struct {
	p                     FourCornerParams
	tl, bl, br, tr         sphere.Vector3
	widthM, heightM        float64
}

// NewFourCornerLocalizer validates p and builds a FourCornerLocalizer.
func NewFourCornerLocalizer(p FourCornerParams) (*FourCornerLocalizer, error) {
	if p.Rows <= 0 {
		return nil, &ErrInvalidParameters{Reason: "no image rows"}
	}
	if p.Cols <= 0 {
		return nil, &ErrInvalidParameters{Reason: "no image columns"}
	}
	if p.BodyRadiusM <= 0 {
		p.BodyRadiusM = MarsRadiusM
	}

	f := &FourCornerLocalizer{
		p:  p,
		tl: sphere.LatLonToUnit(p.TopLeftLat, p.TopLeftLon),
		bl: sphere.LatLonToUnit(p.BottomLeftLat, p.BottomLeftLon),
		br: sphere.LatLonToUnit(p.BottomRightLat, p.BottomRightLon),
		tr: sphere.LatLonToUnit(p.TopRightLat, p.TopRightLon),
	}

	// Edge pixel pitches derive from average geodesic distances between
	// corners, used for ObservationWidthM/LengthM.
	topWidth := sphere.GeodesicDistanceUnit(f.tl, f.tr, p.BodyRadiusM)
	bottomWidth := sphere.GeodesicDistanceUnit(f.bl, f.br, p.BodyRadiusM)
	leftHeight := sphere.GeodesicDistanceUnit(f.tl, f.bl, p.BodyRadiusM)
	rightHeight := sphere.GeodesicDistanceUnit(f.tr, f.br, p.BodyRadiusM)
	f.widthM = (topWidth + bottomWidth) / 2
	f.heightM = (leftHeight + rightHeight) / 2

	return f, nil
}

// PixelToLatLon bilinearly interpolates the four corner unit vectors and
// renormalizes the result to the sphere.
func (f *FourCornerLocalizer) PixelToLatLon(row, col float64) (float64, float64, error) {
	R := float64(f.p.Rows)
	C := float64(f.p.Cols)

	top := lerp(f.tl, f.tr, col/C)
	bottom := lerp(f.bl, f.br, col/C)
	mixed := lerp(top, bottom, row/R)

	unit, err := mixed.Unit()
	if err != nil {
		return 0, 0, err
	}
	return sphere.UnitToLatLon(unit)
}

func lerp(a, b sphere.Vector3, t float64) sphere.Vector3 {
	return sphere.Vector3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// LatLonToPixel inverts PixelToLatLon by numerical minimization; the
// bilinear forward map has no convenient closed-form inverse.
func (f *FourCornerLocalizer) LatLonToPixel(lat, lon float64) (float64, float64, error) {
	return invertByMinimization(f, lat, lon, f.p.BodyRadiusM, DefaultResolutionM)
}

func (f *FourCornerLocalizer) ObservationWidthM() float64  { return f.widthM }
func (f *FourCornerLocalizer) ObservationLengthM() float64 { return f.heightM }
func (f *FourCornerLocalizer) NormalizedPixelSpace() bool  { return false }
func (f *FourCornerLocalizer) FlightDirection() int        { return 1 }
func (f *FourCornerLocalizer) Rows() int                   { return f.p.Rows }
func (f *FourCornerLocalizer) Cols() int                   { return f.p.Cols }
