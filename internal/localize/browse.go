package localize

// BrowseLocalizer applies a uniform pixel-scale factor between a
// reduced-resolution browse image and the full observation, delegating
// both mappings to the underlying full-resolution localizer (typically a
// MapProjectedLocalizer).
type BrowseLocalizer struct {
	full       Localizer
	scale      float64 // browse pixels per full-resolution pixel, > 0
	rows, cols int
}

// NewBrowseLocalizer validates scale and wraps full.
func NewBrowseLocalizer(full Localizer, scale float64) (*BrowseLocalizer, error) {
	if scale <= 0 {
		return nil, &ErrInvalidParameters{Reason: "browse scale factor must be strictly positive"}
	}
	return &BrowseLocalizer{
		full:  full,
		scale: scale,
		rows:  int(float64(full.Rows()) * scale),
		cols:  int(float64(full.Cols()) * scale),
	}, nil
}

// PixelToLatLon converts a browse-image pixel to a full-resolution pixel
// and delegates.
func (b *BrowseLocalizer) PixelToLatLon(row, col float64) (float64, float64, error) {
	return b.full.PixelToLatLon(row/b.scale, col/b.scale)
}

// LatLonToPixel delegates to the full-resolution localizer and converts
// the result back to browse-image pixel space.
func (b *BrowseLocalizer) LatLonToPixel(lat, lon float64) (float64, float64, error) {
	row, col, err := b.full.LatLonToPixel(lat, lon)
	if err != nil {
		return 0, 0, err
	}
	return row * b.scale, col * b.scale, nil
}

func (b *BrowseLocalizer) ObservationWidthM() float64  { return b.full.ObservationWidthM() }
func (b *BrowseLocalizer) ObservationLengthM() float64 { return b.full.ObservationLengthM() }
func (b *BrowseLocalizer) NormalizedPixelSpace() bool  { return b.full.NormalizedPixelSpace() }
func (b *BrowseLocalizer) FlightDirection() int        { return b.full.FlightDirection() }
func (b *BrowseLocalizer) Rows() int                   { return b.rows }
func (b *BrowseLocalizer) Cols() int                   { return b.cols }
