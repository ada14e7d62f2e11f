package consolidate

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type CLI struct {
	Path string `arg:"" type:"existingdir" help:"Directory holding raw NMEA files"`
	From string `default:"nmea-raw.20060102-150405.gz" help:"Naming pattern of the files to consolidate"`
	To   string `default:"nmea-raw.200601.gz" help:"Naming pattern of the consolidated files"`
}

func (cli *CLI) Run(logger *slog.Logger) error {
	return consolidate(cli.Path, cli.From, cli.To, time.Now(), logger.With("module", "consolidate"))
}

// consolidate concatenates the gzipped raw files in dir into one file per
// To period, leaving files from the current period alone. Source files
// are removed once their output file is complete.
func consolidate(dir, from, to string, now time.Time, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) bool {
		return a.Name() < b.Name()
	})

	curPeriod := now.Format(to)
	var out *output
	for _, e := range entries {
		t, err := time.Parse(from, e.Name())
		if err != nil {
			continue
		}
		outFile := t.Format(to)
		if outFile == curPeriod || outFile == e.Name() {
			continue
		}

		if out == nil || out.name != outFile {
			if err := out.finish(); err != nil {
				return err
			}
			out, err = newOutput(dir, outFile)
			if err != nil {
				return err
			}
		}

		logger.Info("Consolidating", "from", e.Name(), "to", outFile)
		if err := out.append(filepath.Join(dir, e.Name())); err != nil {
			logger.Warn("Skipping file", "name", e.Name(), "error", err)
			continue
		}
	}

	return out.finish()
}

type output struct {
	name    string
	fd      *os.File
	gw      *gzip.Writer
	sources []string
}

func newOutput(dir, name string) (*output, error) {
	path := filepath.Join(dir, name)
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create outfile: %w", err)
	}
	return &output{name: name, fd: fd, gw: gzip.NewWriter(fd)}, nil
}

func (o *output) append(src string) error {
	fd, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fd.Close()

	gr, err := gzip.NewReader(fd)
	if err != nil {
		return err
	}
	if _, err := io.Copy(o.gw, gr); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	o.sources = append(o.sources, src)
	return nil
}

// finish closes the output and removes its sources. A nil output is a
// no-op.
func (o *output) finish() error {
	if o == nil {
		return nil
	}
	if err := o.gw.Close(); err != nil {
		o.fd.Close()
		return fmt.Errorf("%s: %w", o.name, err)
	}
	if err := o.fd.Close(); err != nil {
		return fmt.Errorf("%s: %w", o.name, err)
	}
	for _, src := range o.sources {
		_ = os.Remove(src)
	}
	return nil
}
