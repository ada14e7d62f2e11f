package selection

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"calmh.dev/gpx-route/internal/gpx/document"
	"calmh.dev/gpx-route/internal/resolve"
)

func candidates() []resolve.Candidate {
	return []resolve.Candidate{
		{Label: resolve.Waypoints, Coordinates: []document.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}, Names: []string{"Harbour", "Lighthouse"}},
		{Label: resolve.Route, Coordinates: []document.Coordinate{{Lat: 1, Lon: 0}, {Lat: 1, Lon: 1}}, Names: []string{"Out"}},
		{Label: resolve.Track},
	}
}

func TestPrompt(t *testing.T) {
	cases := []struct {
		input string
		label resolve.Label
		ok    bool
	}{
		{"1\n", resolve.Waypoints, true},
		{"2\n", resolve.Route, true},
		{"route\n", resolve.Route, true},
		{" Waypoints \n", resolve.Waypoints, true},
		{"\n", "", false},
		{"q\n", "", false},
		{"cancel\n", "", false},
		{"", "", false},
		{"7\nbanana\n2\n", resolve.Route, true},
		{"3\ntrack\n1\n", resolve.Waypoints, true},
		{"3\n", "", false},
	}

	for _, c := range cases {
		var out bytes.Buffer
		p := &Prompt{In: strings.NewReader(c.input), Out: &out}
		label, ok, err := p.Choose(context.Background(), candidates())
		if err != nil {
			t.Errorf("input %q: unexpected error %v", c.input, err)
			continue
		}
		if label != c.label || ok != c.ok {
			t.Errorf("input %q: got %q, %v, want %q, %v", c.input, label, ok, c.label, c.ok)
		}
	}
}

func TestPromptListsCandidates(t *testing.T) {
	var out bytes.Buffer
	p := &Prompt{In: strings.NewReader("\n"), Out: &out}
	if _, _, err := p.Choose(context.Background(), candidates()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"1) waypoints", "2) route", "3) track", "Harbour, Lighthouse", "(Out)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestPromptContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Prompt{In: strings.NewReader("1\n"), Out: new(bytes.Buffer)}
	if _, _, err := p.Choose(ctx, candidates()); !errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled, got", err)
	}
}

func TestDescribe(t *testing.T) {
	c := resolve.Candidate{
		Label:       resolve.Waypoints,
		Coordinates: []document.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}},
		Names:       []string{"a", "b", "c", "d", "e"},
	}
	got := Describe(c)
	if !strings.Contains(got, "2 points") {
		t.Error("missing point count:", got)
	}
	if !strings.Contains(got, "60.0 NM") {
		t.Error("missing length:", got)
	}
	if !strings.Contains(got, "(a, b, c and 2 more)") {
		t.Error("bad names:", got)
	}
}

func TestFixedAndRefuse(t *testing.T) {
	label, ok, err := Fixed(resolve.Track).Choose(context.Background(), nil)
	if label != resolve.Track || !ok || err != nil {
		t.Error("bad fixed choice", label, ok, err)
	}

	_, ok, err = Refuse{}.Choose(context.Background(), nil)
	if ok || !errors.Is(err, ErrNoChooser) {
		t.Error("bad refusal", ok, err)
	}
}

func TestForTerminal(t *testing.T) {
	ch, err := ForTerminal("route", os.Stdin, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if ch != Fixed(resolve.Route) {
		t.Errorf("expected fixed route choice, got %#v", ch)
	}

	if _, err := ForTerminal("elsewhere", os.Stdin, io.Discard); !errors.Is(err, resolve.ErrInvalidSelection) {
		t.Error("expected ErrInvalidSelection, got", err)
	}

	fd, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()
	ch, err = ForTerminal("", fd, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(Refuse); !ok {
		t.Errorf("expected refusal for a non-terminal, got %#v", ch)
	}
}
