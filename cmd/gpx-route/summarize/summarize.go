package summarize

import (
	"fmt"
	"io"
	"os"
	"time"

	"calmh.dev/gpx-route/internal/geometry"
	"calmh.dev/gpx-route/internal/gpx/document"
	"calmh.dev/gpx-route/internal/gpx/reader"
	"calmh.dev/gpx-route/internal/resolve"
	"calmh.dev/gpx-route/internal/selection"
)

type CLI struct {
	Files []string `arg:"" type:"existingfile" help:"GPX files to describe"`
}

func (cli *CLI) Run() error {
	for i, name := range cli.Files {
		doc, err := reader.ReadFile(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println("---")
		}
		fmt.Printf("File: %s\n", name)
		summarize(os.Stdout, doc)
	}
	return nil
}

func summarize(w io.Writer, doc *document.Document) {
	if doc.Name != "" {
		fmt.Fprintf(w, "Name: %s\n", doc.Name)
	}
	fmt.Fprintf(w, "Waypoints: %d, routes: %d, tracks: %d\n", len(doc.Waypoints), len(doc.Routes), len(doc.Tracks))

	switch res := resolve.Classify(doc).(type) {
	case resolve.Unambiguous:
		fmt.Fprintf(w, "Path: %s, %d points, %.1f NM\n", res.Label, len(res.Coordinates), geometry.PathLength(res.Coordinates))
	case resolve.Ambiguous:
		fmt.Fprintln(w, "Path: ambiguous, candidates:")
		for _, c := range res.Candidates {
			fmt.Fprintf(w, "  %s\n", selection.Describe(c))
		}
	}

	for _, trk := range doc.Tracks {
		summarizeTrack(w, trk)
	}
}

func summarizeTrack(w io.Writer, trk document.Track) {
	pts := trk.Points()
	if len(pts) == 0 || pts[0].Time.IsZero() || pts[len(pts)-1].Time.IsZero() {
		return
	}
	start := pts[0]
	last := pts[len(pts)-1]
	td := last.Time.Sub(start.Time)

	name := trk.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "Track: %s\n", name)
	fmt.Fprintf(w, "  Start: %v\n  End:   %v\n  Duration: %s\n", start.Time.UTC(), last.Time.UTC(), td.Round(time.Minute))

	dist := geometry.PathLength(document.Coordinates(pts))
	fmt.Fprintf(w, "  Distance: %.1f NM\n", dist)
	if td > 0 {
		fmt.Fprintf(w, "  Average speed: %.1f kt\n", dist/td.Hours())
	}
	course := geometry.Bearing(start.Lat, start.Lon, last.Lat, last.Lon)
	fmt.Fprintf(w, "  Overall direction: %s\n", geometry.CardinalDirection(int(course)))
}
