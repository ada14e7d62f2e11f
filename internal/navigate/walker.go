package navigate

import (
	"time"

	"calmh.dev/gpx-route/internal/geometry"
	"calmh.dev/gpx-route/internal/gpx/document"
)

// Distances closer than this, in nautical miles, are equal.
const epsilon = 1e-9

// Fix is a simulated position report.
type Fix struct {
	Lat    float64
	Lon    float64
	Speed  float64 // knots
	Course float64 // degrees true
	When   time.Time
}

// Walker moves along a path at constant speed.
type Walker struct {
	coords []document.Coordinate
	speed  float64 // knots

	leg      int     // index of the start of the current leg
	progress float64 // nautical miles covered on the current leg
	course   float64
	covered  float64
}

func NewWalker(coords []document.Coordinate, speedKnots float64) *Walker {
	w := &Walker{coords: coords, speed: speedKnots}
	w.skipEmptyLegs()
	return w
}

// Position returns the current position and course. The walker must have
// at least one coordinate.
func (w *Walker) Position() (lat, lon, course float64) {
	if w.leg >= len(w.coords)-1 {
		last := w.coords[len(w.coords)-1]
		return last.Lat, last.Lon, w.course
	}
	a, b := w.coords[w.leg], w.coords[w.leg+1]
	legLen := geometry.Distance(a.Lat, a.Lon, b.Lat, b.Lon)
	lat, lon = geometry.Interpolate(a.Lat, a.Lon, b.Lat, b.Lon, w.progress/legLen)
	return lat, lon, w.course
}

// Advance moves the walker forward by d at the configured speed and
// reports whether the end of the path has been reached.
func (w *Walker) Advance(d time.Duration) bool {
	remaining := w.speed * d.Hours()
	for remaining > 0 && !w.Done() {
		a, b := w.coords[w.leg], w.coords[w.leg+1]
		legLeft := geometry.Distance(a.Lat, a.Lon, b.Lat, b.Lon) - w.progress
		if remaining < legLeft-epsilon {
			w.progress += remaining
			w.covered += remaining
			break
		}
		remaining -= legLeft
		w.covered += legLeft
		w.leg++
		w.progress = 0
		w.skipEmptyLegs()
	}
	return w.Done()
}

// Done is true when there is nothing left to walk.
func (w *Walker) Done() bool {
	return w.leg >= len(w.coords)-1
}

// Leg returns the index of the coordinate the walker last passed.
func (w *Walker) Leg() int {
	if len(w.coords) == 0 {
		return 0
	}
	if w.leg >= len(w.coords) {
		return len(w.coords) - 1
	}
	return w.leg
}

// Covered is the distance walked so far, in nautical miles.
func (w *Walker) Covered() float64 {
	return w.covered
}

// Len is the number of coordinates in the path.
func (w *Walker) Len() int {
	return len(w.coords)
}

// skipEmptyLegs moves past legs of zero length, which have no defined
// course, and sets the course for the current leg.
func (w *Walker) skipEmptyLegs() {
	for !w.Done() {
		a, b := w.coords[w.leg], w.coords[w.leg+1]
		if geometry.Distance(a.Lat, a.Lon, b.Lat, b.Lon) > 0 {
			w.course = geometry.Bearing(a.Lat, a.Lon, b.Lat, b.Lon)
			return
		}
		w.leg++
	}
}
