package navigate

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/slog"
)

var (
	rawMessagesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "raw",
		Name:      "recorded_total",
	})
	rawFilesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "raw",
		Name:      "files_created_total",
	})
)

// rawCollector writes every sentence to a file, starting a new file for
// each time window.
type rawCollector struct {
	filePat  string
	bufSize  int
	window   time.Duration
	compress bool
	c        <-chan string
	logger   *slog.Logger
	now      func() time.Time
}

func collectRAW(filePat string, bufSize int, window time.Duration, compress bool, c <-chan string, logger *slog.Logger) *rawCollector {
	return &rawCollector{
		filePat:  filePat,
		bufSize:  bufSize,
		window:   window,
		compress: compress,
		c:        c,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *rawCollector) String() string {
	return fmt.Sprintf("raw-collector(%q)@%p", r.filePat, r)
}

func (r *rawCollector) Serve(ctx context.Context) error {
	var fd interface {
		io.WriteCloser
		Flusher
	}
	defer func() {
		if fd != nil {
			fd.Close()
		}
	}()

	flusher := time.NewTicker(time.Minute)
	defer flusher.Stop()

	var period time.Time
	for {
		select {
		case line := <-r.c:
			now := r.now().UTC()
			truncPeriod := now.Truncate(r.window)

			if !truncPeriod.Equal(period) {
				if fd != nil {
					fd.Close()
				}
				name := now.Truncate(time.Second).Format(r.filePat)
				r.logger.Info("Creating raw file", "name", name)
				_ = os.MkdirAll(filepath.Dir(name), 0o755)
				nfd, err := os.Create(name)
				if err != nil {
					fd = nil
					return err
				}
				if r.compress {
					gw := gzip.NewWriter(nfd)
					bw := bufio.NewWriterSize(gw, r.bufSize)
					fd = &bufWriter{Writer: bw, Flusher: multiFlusher{bw, gw}, closers: []io.Closer{gw, nfd}}
				} else {
					bw := bufio.NewWriterSize(nfd, r.bufSize)
					fd = &bufWriter{Writer: bw, Flusher: bw, closers: []io.Closer{nfd}}
				}
				period = truncPeriod
				rawFilesCreated.Inc()
			}

			fmt.Fprintf(fd, "%s\r\n", line)
			rawMessagesRecorded.Inc()

		case <-flusher.C:
			if fd != nil {
				fd.Flush()
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type Flusher interface{ Flush() error }

type multiFlusher []Flusher

func (f multiFlusher) Flush() error {
	for _, flusher := range f {
		if err := flusher.Flush(); err != nil {
			return err
		}
	}
	return nil
}

type bufWriter struct {
	io.Writer
	Flusher
	closers []io.Closer
}

func (w *bufWriter) Close() error {
	w.Flusher.Flush()
	for _, c := range w.closers {
		_ = c.Close()
	}
	return nil
}
