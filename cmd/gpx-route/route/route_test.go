package route

import (
	"bytes"
	"context"
	"testing"

	"calmh.dev/gpx-route/internal/gpx/document"
)

func TestPrinter(t *testing.T) {
	coords := []document.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1.5, Lon: -2.25}}

	var buf bytes.Buffer
	p := &printer{w: &buf, format: "text"}
	if err := p.RequestRoute(context.Background(), coords); err != nil {
		t.Fatal(err)
	}
	if want := "0.000000,0.000000\n1.500000,-2.250000\n"; buf.String() != want {
		t.Errorf("text output %q, want %q", buf.String(), want)
	}

	buf.Reset()
	p.format = "json"
	if err := p.RequestRoute(context.Background(), coords[1:]); err != nil {
		t.Fatal(err)
	}
	if want := "[\n  {\n    \"lat\": 1.5,\n    \"lon\": -2.25\n  }\n]\n"; buf.String() != want {
		t.Errorf("json output %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := p.RequestRoute(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if want := "[]\n"; buf.String() != want {
		t.Errorf("empty json output %q, want %q", buf.String(), want)
	}
}
