// Package document holds the parsed structure of a GPX file: waypoints,
// routes and tracks, in file order.
package document

import (
	"fmt"
	"time"
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Point is a single recorded or planned position. Elevation and Time are
// carried along from the file but play no part in resolving the path.
type Point struct {
	Lat          float64
	Lon          float64
	Elevation    float64
	HasElevation bool
	Time         time.Time
}

func (p Point) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}

type Waypoint struct {
	Point
	Name string
}

type Segment struct {
	Points []Point
}

type Route struct {
	Name   string
	Points []Point
}

type Track struct {
	Name     string
	Segments []Segment
}

// Points returns the track's points with segments concatenated in order.
func (t Track) Points() []Point {
	var pts []Point
	for _, seg := range t.Segments {
		pts = append(pts, seg.Points...)
	}
	return pts
}

// Document is the root of a parsed GPX file. It is filled in once by the
// reader and treated as read-only afterwards.
type Document struct {
	Name      string
	Waypoints []Waypoint
	Routes    []Route
	Tracks    []Track
}

// WaypointPoints returns the waypoints as plain points, in file order.
func (d *Document) WaypointPoints() []Point {
	var pts []Point
	for _, wpt := range d.Waypoints {
		pts = append(pts, wpt.Point)
	}
	return pts
}

// FlattenRoutes concatenates the points of every route, routes in file
// order, points in route order.
func (d *Document) FlattenRoutes() []Point {
	var pts []Point
	for _, rte := range d.Routes {
		pts = append(pts, rte.Points...)
	}
	return pts
}

// FlattenTracks concatenates the points of every track: track order outer,
// segment order middle, point order inner.
func (d *Document) FlattenTracks() []Point {
	var pts []Point
	for _, trk := range d.Tracks {
		pts = append(pts, trk.Points()...)
	}
	return pts
}

// Coordinates maps points to coordinates, keeping the order.
func Coordinates(pts []Point) []Coordinate {
	if len(pts) == 0 {
		return nil
	}
	coords := make([]Coordinate, len(pts))
	for i, p := range pts {
		coords[i] = p.Coordinate()
	}
	return coords
}
