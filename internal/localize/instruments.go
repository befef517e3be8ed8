package localize

import (
	"github.com/jplmlia/pdsc/internal/metadata"
)

// field reads a required numeric field or returns ErrInvalidParameters.
func field(m metadata.Record, name string) (float64, error) {
	v, ok := m.Float(name)
	if !ok {
		return 0, &ErrInvalidParameters{Reason: "missing or non-numeric field " + name}
	}
	return v, nil
}

// flipAzimuth implements the data-driven north-azimuth flip used by CTX
// and MOC: when the metadata's usage_note marks the observation as
// flipped ("F"), the azimuth is mirrored. This is driven entirely by the
// metadata field, never hardcoded per instrument, per the body-shape /
// azimuth Open Question resolution.
func flipAzimuth(m metadata.Record, northAzimuth float64) float64 {
	note, _ := m.Text("usage_note")
	if note == "F" {
		return 180 - northAzimuth
	}
	return northAzimuth
}

// NewCtxLocalizer builds the localizer for the Mars Reconnaissance
// Orbiter Context Camera (CTX), which assumes a sphere (flattening 0)
// because that empirically matches CTX's reconstructed trajectories
// better than the full ellipsoid.
func NewCtxLocalizer(m metadata.Record) (Localizer, error) {
	lines, err := field(m, "lines")
	if err != nil {
		return nil, err
	}
	samples, err := field(m, "samples")
	if err != nil {
		return nil, err
	}
	centerLat, err := field(m, "center_latitude")
	if err != nil {
		return nil, err
	}
	centerLon, err := field(m, "center_longitude")
	if err != nil {
		return nil, err
	}
	imageHeight, err := field(m, "image_height")
	if err != nil {
		return nil, err
	}
	imageWidth, err := field(m, "image_width")
	if err != nil {
		return nil, err
	}
	northAzimuth, err := field(m, "north_azimuth")
	if err != nil {
		return nil, err
	}

	return NewGeodesicLocalizer(GeodesicParams{
		CenterRow: lines / 2.0, CenterCol: samples / 2.0,
		CenterLat: centerLat, CenterLon: centerLon,
		Rows: int(lines), Cols: int(samples),
		PixelHeightM: imageHeight / lines,
		PixelWidthM:  imageWidth / samples,
		NorthAzimuthDeg: flipAzimuth(m, northAzimuth),
		FlightDirection: -1,
		BodyRadiusM:     MarsRadiusM,
		Flattening:      0,
	})
}

// NewThemisLocalizer builds the localizer for THEMIS (visible or
// infrared); both share the same geometric model.
func NewThemisLocalizer(m metadata.Record) (Localizer, error) {
	lines, err := field(m, "lines")
	if err != nil {
		return nil, err
	}
	samples, err := field(m, "samples")
	if err != nil {
		return nil, err
	}
	centerLat, err := field(m, "center_latitude")
	if err != nil {
		return nil, err
	}
	centerLon, err := field(m, "center_longitude")
	if err != nil {
		return nil, err
	}
	pixelWidth, err := field(m, "pixel_width")
	if err != nil {
		return nil, err
	}
	aspectRatio, err := field(m, "pixel_aspect_ratio")
	if err != nil {
		return nil, err
	}
	northAzimuth, err := field(m, "north_azimuth")
	if err != nil {
		return nil, err
	}

	return NewGeodesicLocalizer(GeodesicParams{
		CenterRow: lines / 2.0, CenterCol: samples / 2.0,
		CenterLat: centerLat, CenterLon: centerLon,
		Rows: int(lines), Cols: int(samples),
		PixelHeightM:    aspectRatio * pixelWidth,
		PixelWidthM:     pixelWidth,
		NorthAzimuthDeg: northAzimuth,
		FlightDirection: 1,
		BodyRadiusM:     MarsRadiusM,
		Flattening:      MarsFlattening,
	})
}

// NewHiRiseLocalizer builds the localizer for HiRISE, which uses square
// pixels and the full ellipsoidal body.
func NewHiRiseLocalizer(m metadata.Record) (Localizer, error) {
	lines, err := field(m, "lines")
	if err != nil {
		return nil, err
	}
	samples, err := field(m, "samples")
	if err != nil {
		return nil, err
	}
	centerLat, err := field(m, "center_latitude")
	if err != nil {
		return nil, err
	}
	centerLon, err := field(m, "center_longitude")
	if err != nil {
		return nil, err
	}
	pixelWidth, err := field(m, "pixel_width")
	if err != nil {
		return nil, err
	}
	northAzimuth, err := field(m, "north_azimuth")
	if err != nil {
		return nil, err
	}

	return NewGeodesicLocalizer(GeodesicParams{
		CenterRow: lines / 2.0, CenterCol: samples / 2.0,
		CenterLat: centerLat, CenterLon: centerLon,
		Rows: int(lines), Cols: int(samples),
		PixelHeightM:    pixelWidth,
		PixelWidthM:     pixelWidth,
		NorthAzimuthDeg: northAzimuth,
		FlightDirection: 1,
		BodyRadiusM:     MarsRadiusM,
		Flattening:      MarsFlattening,
	})
}

// NewMocLocalizer builds the localizer for Mars Orbiter Camera, which
// shares CTX's sphere assumption and azimuth-flip convention.
func NewMocLocalizer(m metadata.Record) (Localizer, error) {
	lines, err := field(m, "lines")
	if err != nil {
		return nil, err
	}
	samples, err := field(m, "samples")
	if err != nil {
		return nil, err
	}
	centerLat, err := field(m, "center_latitude")
	if err != nil {
		return nil, err
	}
	centerLon, err := field(m, "center_longitude")
	if err != nil {
		return nil, err
	}
	imageHeight, err := field(m, "image_height")
	if err != nil {
		return nil, err
	}
	imageWidth, err := field(m, "image_width")
	if err != nil {
		return nil, err
	}
	northAzimuth, err := field(m, "north_azimuth")
	if err != nil {
		return nil, err
	}

	return NewGeodesicLocalizer(GeodesicParams{
		CenterRow: lines / 2.0, CenterCol: samples / 2.0,
		CenterLat: centerLat, CenterLon: centerLon,
		Rows: int(lines), Cols: int(samples),
		PixelHeightM: imageHeight / lines,
		PixelWidthM:  imageWidth / samples,
		NorthAzimuthDeg: flipAzimuth(m, northAzimuth),
		FlightDirection: -1,
		BodyRadiusM:     MarsRadiusM,
		Flattening:      0,
	})
}

// RegisterDefaults installs the constructors for every instrument this
// module ships support for. pkg/pdsc's init calls it once, before any
// lookup, because the registry rejects registrations after the first
// lookup.
func RegisterDefaults() {
	Register("ctx", NewCtxLocalizer)
	Register("themis_vis", NewThemisLocalizer)
	Register("themis_ir", NewThemisLocalizer)
	Register("hirise", NewHiRiseLocalizer)
	Register("moc", NewMocLocalizer)
}
