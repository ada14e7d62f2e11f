package reader

import (
	"fmt"
	"io"
	"os"

	"calmh.dev/gpx-route/internal/gpx/document"
	"github.com/tkrajina/gpxgo/gpx"
)

// ParseError is returned when the input is not a readable GPX document.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadFile opens and parses the named GPX file.
func ReadFile(name string) (*document.Document, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	defer fd.Close()

	doc, err := read(fd, name)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Read parses a GPX document from r.
func Read(r io.Reader) (*document.Document, error) {
	return read(r, "gpx")
}

func read(r io.Reader, name string) (*document.Document, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}
	g, err := gpx.ParseBytes(bs)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return convert(g), nil
}

func convert(g *gpx.GPX) *document.Document {
	doc := &document.Document{Name: g.Name}

	for _, wpt := range g.Waypoints {
		doc.Waypoints = append(doc.Waypoints, document.Waypoint{
			Point: point(wpt),
			Name:  wpt.Name,
		})
	}

	for _, rte := range g.Routes {
		r := document.Route{Name: rte.Name}
		for _, p := range rte.Points {
			r.Points = append(r.Points, point(p))
		}
		doc.Routes = append(doc.Routes, r)
	}

	for _, trk := range g.Tracks {
		t := document.Track{Name: trk.Name}
		for _, seg := range trk.Segments {
			var s document.Segment
			for _, p := range seg.Points {
				s.Points = append(s.Points, point(p))
			}
			t.Segments = append(t.Segments, s)
		}
		doc.Tracks = append(doc.Tracks, t)
	}

	return doc
}

func point(p gpx.GPXPoint) document.Point {
	return document.Point{
		Lat:          p.Latitude,
		Lon:          p.Longitude,
		Elevation:    p.Elevation.Value(),
		HasElevation: p.Elevation.NotNull(),
		Time:         p.Timestamp,
	}
}
