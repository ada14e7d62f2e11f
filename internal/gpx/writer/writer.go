package writer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"golang.org/x/exp/slog"
)

// Recorder writes sampled positions as a single GPX track. The file is
// opened on the first sample and completed by Flush.
type Recorder struct {
	Opener         func(time.Time) (io.WriteCloser, error)
	SampleInterval time.Duration
	Name           string
	Logger         *slog.Logger

	last        time.Time
	destination io.WriteCloser
}

type sample struct {
	lat, lon float64
	when     time.Time
}

func (s sample) gpx() string {
	return fmt.Sprintf(`<trkpt lat="%f" lon="%f"><time>%s</time></trkpt>`, s.lat, s.lon, s.when.UTC().Format(time.RFC3339))
}

// Sample records the position unless the previous recorded sample is
// more recent than the sample interval. It reports whether the position
// was recorded.
func (r *Recorder) Sample(lat, lon float64, when time.Time) bool {
	if r.destination != nil && when.Sub(r.last) < r.SampleInterval {
		return false
	}

	if r.destination == nil {
		if !r.startRecording(when) {
			return false
		}
	}

	r.last = when
	if _, err := fmt.Fprintln(r.destination, sample{lat, lon, when}.gpx()); err != nil {
		r.logger().Error("Writing to file", "error", err)
		return false
	}
	return true
}

// Flush completes and closes the current file, if any. The next sample
// starts a new one.
func (r *Recorder) Flush() error {
	if r.destination == nil {
		return nil
	}
	return r.stopRecording()
}

func (r *Recorder) startRecording(t time.Time) bool {
	fd, err := r.Opener(t)
	if err != nil {
		r.logger().Error("Opening file", "error", err)
		return false
	}

	header := `<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="gpx-route"><trk>`
	if r.Name != "" {
		header += fmt.Sprintf("<name>%s</name>", escape(r.Name))
	}
	header += "<trkseg>"
	if _, err := fmt.Fprintln(fd, header); err != nil {
		r.logger().Error("Writing to file", "error", err)
		_ = fd.Close()
		return false
	}

	r.destination = fd
	return true
}

func (r *Recorder) stopRecording() error {
	defer func() {
		r.destination = nil
		r.last = time.Time{}
	}()

	footer := `</trkseg></trk></gpx>`
	if _, err := fmt.Fprintln(r.destination, footer); err != nil {
		_ = r.destination.Close()
		return fmt.Errorf("writing footer: %w", err)
	}
	if err := r.destination.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

func (r *Recorder) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
