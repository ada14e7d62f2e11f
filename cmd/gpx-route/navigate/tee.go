package navigate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const teeBufferSize = 1024

var (
	teeRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "tee",
		Name:      "messages_input_total",
	}, []string{"tee"})
	teeSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "tee",
		Name:      "messages_output_total",
	}, []string{"tee"})
	teeFilterSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "tee",
		Name:      "messages_filter_skipped_total",
	}, []string{"tee"})
	teeDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "tee",
		Name:      "messages_dropped_total",
	}, []string{"tee"})
)

// Tee copies sentences from its input to every output, optionally only
// those with a given prefix. Slow outputs lose sentences rather than
// holding up the others.
type Tee struct {
	name    string
	input   <-chan string
	prefix  string
	outputs []chan string
}

func NewTee(name string, input <-chan string) *Tee {
	return &Tee{name: name, input: input}
}

func NewFilteredTee(name string, input <-chan string, prefix string) *Tee {
	return &Tee{name: name, input: input, prefix: prefix}
}

func (t *Tee) String() string {
	if t.prefix == "" {
		return fmt.Sprintf("nmea-tee@%p", t)
	}
	return fmt.Sprintf("nmea-tee(%q)@%p", t.prefix, t)
}

// Output adds an output. All outputs must be added before Serve is called.
func (t *Tee) Output() <-chan string {
	c := make(chan string, teeBufferSize)
	t.outputs = append(t.outputs, c)
	return c
}

func (t *Tee) Serve(ctx context.Context) error {
	for {
		select {
		case line := <-t.input:
			teeRead.WithLabelValues(t.name).Inc()
			if !strings.HasPrefix(line, t.prefix) {
				teeFilterSkipped.WithLabelValues(t.name).Inc()
				continue
			}
			for _, out := range t.outputs {
				select {
				case out <- line:
					teeSent.WithLabelValues(t.name).Inc()
				case <-ctx.Done():
					return ctx.Err()
				default:
					teeDropped.WithLabelValues(t.name).Inc()
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// lineWriter copies sentences to a writer, one per line.
type lineWriter struct {
	input <-chan string
	w     io.Writer
	name  string
}

func linesTo(input <-chan string, w io.Writer, name string) *lineWriter {
	return &lineWriter{input: input, w: w, name: name}
}

func (l *lineWriter) String() string {
	return fmt.Sprintf("%s@%p", l.name, l)
}

func (l *lineWriter) Serve(ctx context.Context) error {
	for {
		select {
		case line := <-l.input:
			if _, err := fmt.Fprintf(l.w, "%s\r\n", line); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
