// Package resolve decides which coordinate sequence of a GPX document is
// the path to follow.
//
// A document resolves on its own when it has at most one route, at most
// one track, and exactly one non-empty point collection among its
// waypoints, route points and track points. Anything else is ambiguous
// and needs an outside choice between the three labeled candidates.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"calmh.dev/gpx-route/internal/geometry"
	"calmh.dev/gpx-route/internal/gpx/document"
)

var ErrInvalidSelection = errors.New("invalid selection")

// Label identifies one of the three candidate point collections.
type Label string

const (
	Waypoints Label = "waypoints"
	Route     Label = "route"
	Track     Label = "track"
)

// Labels lists the candidate labels in presentation order.
var Labels = []Label{Waypoints, Route, Track}

func (l Label) Valid() bool {
	switch l {
	case Waypoints, Route, Track:
		return true
	}
	return false
}

// ParseLabel accepts a label as typed by a user: case-insensitive, singular
// or plural.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "waypoints", "waypoint", "wpt":
		return Waypoints, nil
	case "route", "routes", "rte":
		return Route, nil
	case "track", "tracks", "trk":
		return Track, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSelection, s)
}

// Candidate is one labeled point collection with the metadata a chooser
// may want to show.
type Candidate struct {
	Label       Label
	Coordinates []document.Coordinate
	Names       []string
}

func (c Candidate) Empty() bool {
	return len(c.Coordinates) == 0
}

// LengthNM is the length of the candidate path in nautical miles.
func (c Candidate) LengthNM() float64 {
	return geometry.PathLength(c.Coordinates)
}

// Resolution is the outcome of Classify, either Unambiguous or Ambiguous.
type Resolution interface {
	resolution()
}

// Unambiguous carries the one path the document describes.
type Unambiguous struct {
	Label       Label
	Coordinates []document.Coordinate
}

// Ambiguous carries all three candidates, empty ones included, in Labels
// order.
type Ambiguous struct {
	Candidates []Candidate
}

func (Unambiguous) resolution() {}
func (Ambiguous) resolution()   {}

// Candidate returns the candidate with the given label.
func (a Ambiguous) Candidate(l Label) (Candidate, bool) {
	for _, c := range a.Candidates {
		if c.Label == l {
			return c, true
		}
	}
	return Candidate{}, false
}

// Classify inspects doc and reports whether it yields a single path. It
// has no side effects and the document is not modified.
func Classify(doc *document.Document) Resolution {
	cands := Candidates(doc)

	// Several routes or tracks are a choice between named paths, even
	// when only one of them has points.
	if len(doc.Routes) > 1 || len(doc.Tracks) > 1 {
		return Ambiguous{Candidates: cands}
	}

	var nonEmpty []Candidate
	for _, c := range cands {
		if !c.Empty() {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 1 {
		return Unambiguous{Label: nonEmpty[0].Label, Coordinates: nonEmpty[0].Coordinates}
	}

	return Ambiguous{Candidates: cands}
}

// ResolveSelection returns the flattened coordinates for the chosen label.
func ResolveSelection(label Label, doc *document.Document) ([]document.Coordinate, error) {
	if !label.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, label)
	}
	return coordinates(label, doc), nil
}

// Candidates returns the three candidates of doc in Labels order.
func Candidates(doc *document.Document) []Candidate {
	cands := make([]Candidate, 0, len(Labels))
	for _, l := range Labels {
		cands = append(cands, Candidate{
			Label:       l,
			Coordinates: coordinates(l, doc),
			Names:       names(l, doc),
		})
	}
	return cands
}

func coordinates(l Label, doc *document.Document) []document.Coordinate {
	switch l {
	case Waypoints:
		return document.Coordinates(doc.WaypointPoints())
	case Route:
		return document.Coordinates(doc.FlattenRoutes())
	case Track:
		return document.Coordinates(doc.FlattenTracks())
	}
	return nil
}

func names(l Label, doc *document.Document) []string {
	var ns []string
	switch l {
	case Waypoints:
		for _, w := range doc.Waypoints {
			if w.Name != "" {
				ns = append(ns, w.Name)
			}
		}
	case Route:
		for _, r := range doc.Routes {
			if r.Name != "" {
				ns = append(ns, r.Name)
			}
		}
	case Track:
		for _, t := range doc.Tracks {
			if t.Name != "" {
				ns = append(ns, t.Name)
			}
		}
	}
	return ns
}
