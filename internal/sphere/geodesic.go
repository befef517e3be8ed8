package sphere

import "math"

// ForwardResult is the destination point and forward azimuth returned by
// ForwardGeodesic.
type ForwardResult struct {
	Lat, Lon float64 // degrees
	Azimuth  float64 // degrees, forward azimuth at the destination
}

// ForwardGeodesic solves the direct geodesic problem: given a starting
// point, an initial azimuth, and a distance along that azimuth, find the
// destination point and the forward azimuth there.
//
// radiusM is the equatorial radius of the reference body; flattening is
// its ellipsoidal flattening (0 selects a pure-sphere specialization,
// which is both faster and, for several Mars instruments, empirically a
// better match to reconstructed trajectories than the ellipsoidal model).
func ForwardGeodesic(latDeg, lonDeg, azimuthDeg, distanceM, radiusM, flattening float64) (ForwardResult, error) {
	if flattening == 0 {
		return forwardSpherical(latDeg, lonDeg, azimuthDeg, distanceM, radiusM), nil
	}
	return forwardVincenty(latDeg, lonDeg, azimuthDeg, distanceM, radiusM, flattening)
}

// forwardSpherical is the closed-form destination-point formula for a
// sphere (Chris Veness' "spherical law of cosines" destination point).
func forwardSpherical(latDeg, lonDeg, azimuthDeg, distanceM, radiusM float64) ForwardResult {
	delta := distanceM / radiusM
	theta := deg2rad(azimuthDeg)
	phi1 := deg2rad(latDeg)
	lambda1 := deg2rad(lonDeg)

	sinPhi1, cosPhi1 := math.Sincos(phi1)
	sinDelta, cosDelta := math.Sincos(delta)
	sinTheta, cosTheta := math.Sincos(theta)

	sinPhi2 := sinPhi1*cosDelta + cosPhi1*sinDelta*cosTheta
	phi2 := math.Asin(clamp(sinPhi2, -1, 1))
	y := sinTheta * sinDelta * cosPhi1
	x := cosDelta - sinPhi1*sinPhi2
	lambda2 := lambda1 + math.Atan2(y, x)

	// Forward azimuth at the destination, in the direction of travel
	// (also correct for zero and negative distances).
	finalAzi := math.Atan2(cosPhi1*sinTheta, cosPhi1*cosDelta*cosTheta-sinPhi1*sinDelta)

	return ForwardResult{
		Lat:     rad2deg(phi2),
		Lon:     normalizeLonDeg(rad2deg(lambda2)),
		Azimuth: normalizeAzimuthDeg(rad2deg(finalAzi)),
	}
}

// forwardVincenty is Vincenty's direct solution of the geodesic on an
// ellipsoid of revolution with equatorial radius a and flattening f.
func forwardVincenty(latDeg, lonDeg, azimuthDeg, distanceM, a, f float64) (ForwardResult, error) {
	b := a * (1 - f)

	phi1 := deg2rad(latDeg)
	lambda1 := deg2rad(lonDeg)
	alpha1 := deg2rad(azimuthDeg)
	s := distanceM

	sinAlpha1, cosAlpha1 := math.Sincos(alpha1)

	tanU1 := (1 - f) * math.Tan(phi1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := s / (b * bigA)

	var sinSigma, cosSigma, cos2SigmaM, deltaSigma float64
	const maxIterations = 100
	iterations := 0
	for {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma = math.Sin(sigma)
		cosSigma = math.Cos(sigma)
		deltaSigma = bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		sigmaPrime := sigma
		sigma = s/(b*bigA) + deltaSigma
		iterations++
		if math.Abs(sigma-sigmaPrime) <= 1e-12 {
			break
		}
		if iterations >= maxIterations {
			return ForwardResult{}, &ErrNoConvergence{Iterations: iterations}
		}
	}

	x := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	phi2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1, (1-f)*math.Sqrt(sinAlpha*sinAlpha+x*x))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	bigC := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	bigL := lambda - (1-bigC)*f*sinAlpha*(sigma+bigC*sinSigma*(cos2SigmaM+bigC*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
	lambda2 := lambda1 + bigL

	alpha2 := math.Atan2(sinAlpha, -x)

	return ForwardResult{
		Lat:     rad2deg(phi2),
		Lon:     normalizeLonDeg(rad2deg(lambda2)),
		Azimuth: normalizeAzimuthDeg(rad2deg(alpha2)),
	}, nil
}

func normalizeLonDeg(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func normalizeAzimuthDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
