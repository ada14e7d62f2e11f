package resolve

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"calmh.dev/gpx-route/internal/gpx/document"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"
)

type fakeChooser struct {
	label  Label
	ok     bool
	err    error
	called int
	seen   []Candidate
}

func (c *fakeChooser) Choose(_ context.Context, cands []Candidate) (Label, bool, error) {
	c.called++
	c.seen = cands
	return c.label, c.ok, c.err
}

type fakeRequester struct {
	requests [][]document.Coordinate
	err      error
}

func (r *fakeRequester) RequestRoute(_ context.Context, coords []document.Coordinate) error {
	r.requests = append(r.requests, coords)
	return r.err
}

func staticParser(doc *document.Document, err error) Parser {
	return ParserFunc(func(string) (*document.Document, error) {
		return doc, err
	})
}

func TestOpenUnambiguous(t *testing.T) {
	doc := &document.Document{Routes: []document.Route{{Points: pts(0, 0, 1, 1, 2, 2)}}}
	ch := &fakeChooser{}
	req := &fakeRequester{}
	o := &Opener{Parser: staticParser(doc, nil), Chooser: ch, Requester: req}

	ok, err := o.Open(context.Background(), "route.gpx")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a resolution")
	}
	if ch.called != 0 {
		t.Error("chooser should not be asked for an unambiguous document")
	}
	if len(req.requests) != 1 {
		t.Fatal("expected one request, got", len(req.requests))
	}
	if want := []document.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}; !reflect.DeepEqual(req.requests[0], want) {
		t.Errorf("requested %v, want %v", req.requests[0], want)
	}
}

func TestOpenAmbiguousSelected(t *testing.T) {
	doc := &document.Document{
		Waypoints: wpts(10, 10, 11, 11),
		Routes:    []document.Route{{Points: pts(20, 20, 21, 21)}},
	}
	ch := &fakeChooser{label: Waypoints, ok: true}
	req := &fakeRequester{}
	o := &Opener{Parser: staticParser(doc, nil), Chooser: ch, Requester: req}

	ok, err := o.Open(context.Background(), "mixed.gpx")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a resolution")
	}
	if len(ch.seen) != 3 {
		t.Error("chooser should see three candidates, got", len(ch.seen))
	}
	if want := []document.Coordinate{{Lat: 10, Lon: 10}, {Lat: 11, Lon: 11}}; !reflect.DeepEqual(req.requests[0], want) {
		t.Errorf("requested %v, want %v", req.requests[0], want)
	}
}

func TestOpenCancelled(t *testing.T) {
	doc := &document.Document{}
	ch := &fakeChooser{ok: false}
	req := &fakeRequester{}
	o := &Opener{Parser: staticParser(doc, nil), Chooser: ch, Requester: req}

	ok, err := o.Open(context.Background(), "empty.gpx")
	if err != nil {
		t.Fatal("cancellation is not an error:", err)
	}
	if ok {
		t.Error("expected no resolution")
	}
	if len(req.requests) != 0 {
		t.Error("nothing should be requested after cancellation")
	}
}

func TestOpenInvalidChoice(t *testing.T) {
	doc := &document.Document{}
	ch := &fakeChooser{label: "everything", ok: true}
	req := &fakeRequester{}
	o := &Opener{Parser: staticParser(doc, nil), Chooser: ch, Requester: req}

	_, err := o.Open(context.Background(), "empty.gpx")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatal("expected ErrInvalidSelection, got", err)
	}
	if len(req.requests) != 0 {
		t.Error("nothing should be requested after an invalid choice")
	}
}

func TestOpenEmptySelection(t *testing.T) {
	// An empty candidate is still a valid choice; the requester deals
	// with the empty path.
	doc := &document.Document{}
	ch := &fakeChooser{label: Track, ok: true}
	req := &fakeRequester{}
	o := &Opener{Parser: staticParser(doc, nil), Chooser: ch, Requester: req}

	ok, err := o.Open(context.Background(), "empty.gpx")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || len(req.requests) != 1 || len(req.requests[0]) != 0 {
		t.Error("expected one empty request, got", req.requests)
	}
}

func TestOpenErrors(t *testing.T) {
	parseErr := errors.New("parse failure")
	o := &Opener{Parser: staticParser(nil, parseErr), Chooser: &fakeChooser{}, Requester: &fakeRequester{}}
	if _, err := o.Open(context.Background(), "bad.gpx"); !errors.Is(err, parseErr) {
		t.Error("expected parse error, got", err)
	}

	chooseErr := errors.New("chooser failure")
	o = &Opener{Parser: staticParser(&document.Document{}, nil), Chooser: &fakeChooser{err: chooseErr}, Requester: &fakeRequester{}}
	if _, err := o.Open(context.Background(), "x.gpx"); !errors.Is(err, chooseErr) {
		t.Error("expected chooser error, got", err)
	}

	reqErr := errors.New("requester failure")
	doc := &document.Document{Routes: []document.Route{{Points: pts(0, 0)}}}
	o = &Opener{Parser: staticParser(doc, nil), Chooser: &fakeChooser{}, Requester: &fakeRequester{err: reqErr}}
	if _, err := o.Open(context.Background(), "x.gpx"); !errors.Is(err, reqErr) {
		t.Error("expected requester error, got", err)
	}
}

// counterValue returns the current value of the named counter with the
// given label value, or zero when it has not been created yet.
func counterValue(t *testing.T, name, label string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestClassifyHasNoSideEffects(t *testing.T) {
	const name = "gpxroute_resolve_classifications_total"
	doc := &document.Document{Routes: []document.Route{{Points: pts(0, 0, 1, 1)}}}

	before := counterValue(t, name, "unambiguous")
	Classify(doc)
	if _, err := ResolveSelection(Route, doc); err != nil {
		t.Fatal(err)
	}
	if after := counterValue(t, name, "unambiguous"); after != before {
		t.Errorf("Classify changed the counter from %v to %v", before, after)
	}

	o := &Opener{Parser: staticParser(doc, nil), Chooser: &fakeChooser{}, Requester: &fakeRequester{}}
	if _, err := o.Open(context.Background(), "route.gpx"); err != nil {
		t.Fatal(err)
	}
	if after := counterValue(t, name, "unambiguous"); after != before+1 {
		t.Errorf("Open should count one classification, got %v -> %v", before, after)
	}
}

func TestOpenDefaultLoggerModule(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	doc := &document.Document{Routes: []document.Route{{Points: pts(0, 0, 1, 1)}}}
	o := &Opener{Parser: staticParser(doc, nil), Chooser: &fakeChooser{}, Requester: &fakeRequester{}}
	if _, err := o.Open(context.Background(), "route.gpx"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "module=resolve") {
		t.Errorf("log output lacks module attribute: %q", buf.String())
	}
}
