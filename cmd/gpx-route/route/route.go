package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"calmh.dev/gpx-route/internal/gpx/document"
	"calmh.dev/gpx-route/internal/gpx/reader"
	"calmh.dev/gpx-route/internal/resolve"
	"calmh.dev/gpx-route/internal/selection"
	"golang.org/x/exp/slog"
)

type CLI struct {
	File   string `arg:"" type:"existingfile" help:"GPX file to read"`
	Select string `help:"Candidate to use when the file is ambiguous (waypoints, route, track)" placeholder:"LABEL" env:"GPX_ROUTE_SELECT"`
	Format string `default:"text" enum:"text,json" help:"Output format (${enum})"`
}

func (cli *CLI) Run(ctx context.Context, logger *slog.Logger) error {
	chooser, err := selection.ForTerminal(cli.Select, os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	o := &resolve.Opener{
		Parser:    resolve.ParserFunc(reader.ReadFile),
		Chooser:   chooser,
		Requester: &printer{w: os.Stdout, format: cli.Format},
		Logger:    logger,
	}
	ok, err := o.Open(ctx, cli.File)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("No path selected")
	}
	return nil
}

// printer writes the path as lat,lon lines or as a JSON array.
type printer struct {
	w      io.Writer
	format string
}

func (p *printer) RequestRoute(_ context.Context, coords []document.Coordinate) error {
	if p.format == "json" {
		if coords == nil {
			coords = []document.Coordinate{}
		}
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(coords)
	}

	for _, c := range coords {
		if _, err := fmt.Fprintln(p.w, c); err != nil {
			return err
		}
	}
	return nil
}
