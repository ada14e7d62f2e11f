package geometry

import (
	"math"

	"calmh.dev/gpx-route/internal/gpx/document"
)

const earthRadiusNM = 180 * 60 / math.Pi

// Distance returns the great circle distance between two positions, in
// nautical miles.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	radlat1 := lat1 * math.Pi / 180
	radlat2 := lat2 * math.Pi / 180
	radtheta := (lon1 - lon2) * math.Pi / 180
	dist := math.Sin(radlat1)*math.Sin(radlat2) + math.Cos(radlat1)*math.Cos(radlat2)*math.Cos(radtheta)

	// Rounding can push the cosine just outside [-1, 1] for identical or
	// antipodal positions.
	dist = math.Max(-1, math.Min(1, dist))
	return math.Acos(dist) * 180 / math.Pi * 60
}

// Bearing returns the initial course from the first to the second
// position, in degrees [0, 360).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	// β = atan2(X,Y),
	// X = cos θb * sin ∆L
	// Y = cos θa * sin θb – sin θa * cos θb * cos ∆L
	lat1 *= math.Pi / 180
	lon1 *= math.Pi / 180
	lat2 *= math.Pi / 180
	lon2 *= math.Pi / 180
	X := math.Cos(lat2) * math.Sin(lon2-lon1)
	Y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	v := math.Atan2(X, Y) / math.Pi * 180
	if v < 0 {
		v += 360
	}
	return v
}

// Interpolate returns the position at fraction f (0..1) of the way along
// the great circle from the first to the second position.
func Interpolate(lat1, lon1, lat2, lon2, f float64) (float64, float64) {
	if f <= 0 {
		return lat1, lon1
	}
	if f >= 1 {
		return lat2, lon2
	}

	d := Distance(lat1, lon1, lat2, lon2) / earthRadiusNM
	if d == 0 {
		return lat1, lon1
	}
	if math.Sin(d) < 1e-12 {
		// Antipodal positions have no single great circle between them.
		return lat1 + (lat2-lat1)*f, lon1 + (lon2-lon1)*f
	}

	φ1, λ1 := lat1*math.Pi/180, lon1*math.Pi/180
	φ2, λ2 := lat2*math.Pi/180, lon2*math.Pi/180
	a := math.Sin((1-f)*d) / math.Sin(d)
	b := math.Sin(f*d) / math.Sin(d)
	x := a*math.Cos(φ1)*math.Cos(λ1) + b*math.Cos(φ2)*math.Cos(λ2)
	y := a*math.Cos(φ1)*math.Sin(λ1) + b*math.Cos(φ2)*math.Sin(λ2)
	z := a*math.Sin(φ1) + b*math.Sin(φ2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y)) * 180 / math.Pi
	lon := math.Atan2(y, x) * 180 / math.Pi
	return lat, lon
}

// PathLength is the sum of the leg distances along coords, in nautical
// miles.
func PathLength(coords []document.Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1].Lat, coords[i-1].Lon, coords[i].Lat, coords[i].Lon)
	}
	return total
}

func CardinalDirection(degrees int) string {
	if degrees < 23 {
		return "N"
	} else if degrees < 68 {
		return "NE"
	} else if degrees < 113 {
		return "E"
	} else if degrees < 158 {
		return "SE"
	} else if degrees < 203 {
		return "S"
	} else if degrees < 248 {
		return "SW"
	} else if degrees < 293 {
		return "W"
	} else if degrees < 338 {
		return "NW"
	} else {
		return "N"
	}
}
