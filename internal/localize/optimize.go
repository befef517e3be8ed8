package localize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/jplmlia/pdsc/internal/sphere"
)

// forwardOnly is the subset of Localizer that invertByMinimization needs:
// just the forward mapping, so it can be reused by any variant that lacks
// a closed-form inverse.
type forwardOnly interface {
	PixelToLatLon(row, col float64) (lat, lon float64, err error)
}

// invertByMinimization implements the default latlon_to_pixel: minimize the
// geodesic distance between the query point and pixel_to_latlon(u) over
// u = (row, col), starting from the observation's pixel-space origin,
// using Nelder-Mead with an initial simplex size of 0.1 pixel. It stops
// once the objective (metres) has improved by no more than resolutionM
// over 50 consecutive iterations; there is no stopping criterion on the
// pixel step size.
func invertByMinimization(loc forwardOnly, lat, lon, bodyRadiusM, resolutionM float64) (float64, float64, error) {
	const resolutionPix = 0.1

	objective := func(u []float64) float64 {
		pLat, pLon, err := loc.PixelToLatLon(u[0], u[1])
		if err != nil {
			return math.Inf(1)
		}
		return sphere.GeodesicDistance(lat, lon, pLat, pLon, bodyRadiusM)
	}

	problem := optimize.Problem{Func: objective}

	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   resolutionM,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, []float64{0, 0}, settings, &optimize.NelderMead{
		SimplexSize: resolutionPix,
	})
	if err != nil && result == nil {
		return 0, 0, fmt.Errorf("localize: numerical inverse failed: %w", err)
	}

	return result.X[0], result.X[1], nil
}
