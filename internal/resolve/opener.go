package resolve

import (
	"context"
	"fmt"

	"calmh.dev/gpx-route/internal/gpx/document"
	"golang.org/x/exp/slog"
)

// A Parser turns a file name into a document.
type Parser interface {
	Parse(name string) (*document.Document, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(name string) (*document.Document, error)

func (f ParserFunc) Parse(name string) (*document.Document, error) {
	return f(name)
}

// A Chooser picks one of the candidates of an ambiguous document. It
// returns false when the choice was cancelled.
type Chooser interface {
	Choose(ctx context.Context, candidates []Candidate) (Label, bool, error)
}

// A Requester receives the final path. Empty paths are passed on as is.
type Requester interface {
	RequestRoute(ctx context.Context, coords []document.Coordinate) error
}

// Opener runs the whole flow for one file: parse, classify, ask the
// chooser when needed, and hand the result to the requester.
type Opener struct {
	Parser    Parser
	Chooser   Chooser
	Requester Requester
	Logger    *slog.Logger
}

// Open returns false, with a nil error, when the chooser was cancelled and
// nothing was requested.
func (o *Opener) Open(ctx context.Context, name string) (bool, error) {
	logger := o.logger().With("file", name)

	doc, err := o.Parser.Parse(name)
	if err != nil {
		return false, err
	}

	coords, ok, err := o.resolve(ctx, logger, doc)
	if err != nil || !ok {
		return false, err
	}

	logger.Info("Requesting route", "points", len(coords))
	if err := o.Requester.RequestRoute(ctx, coords); err != nil {
		return false, fmt.Errorf("request route: %w", err)
	}
	return true, nil
}

func (o *Opener) resolve(ctx context.Context, logger *slog.Logger, doc *document.Document) ([]document.Coordinate, bool, error) {
	switch res := Classify(doc).(type) {
	case Unambiguous:
		classifications.WithLabelValues("unambiguous").Inc()
		logger.Debug("Document is unambiguous", "label", res.Label)
		return res.Coordinates, true, nil

	case Ambiguous:
		classifications.WithLabelValues("ambiguous").Inc()
		logger.Debug("Document is ambiguous", "routes", len(doc.Routes), "tracks", len(doc.Tracks))
		label, ok, err := o.Chooser.Choose(ctx, res.Candidates)
		if err != nil {
			return nil, false, fmt.Errorf("choose: %w", err)
		}
		if !ok {
			cancellations.Inc()
			logger.Info("Selection cancelled")
			return nil, false, nil
		}
		coords, err := ResolveSelection(label, doc)
		if err != nil {
			return nil, false, err
		}
		selections.WithLabelValues(string(label)).Inc()
		logger.Debug("Selected candidate", "label", label)
		return coords, true, nil

	default:
		panic("bug: unknown resolution type")
	}
}

func (o *Opener) logger() *slog.Logger {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("module", "resolve")
}
