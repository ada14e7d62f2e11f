package writer

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"calmh.dev/gpx-route/internal/gpx/reader"
)

type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestRecorder(t *testing.T) {
	var files []*bufCloser
	r := &Recorder{
		Opener: func(time.Time) (io.WriteCloser, error) {
			f := new(bufCloser)
			files = append(files, f)
			return f, nil
		},
		SampleInterval: 10 * time.Second,
		Name:           "Out & back",
	}

	t0 := time.Date(2023, 6, 24, 12, 0, 0, 0, time.UTC)
	steps := []struct {
		offset time.Duration
		lon    float64
		want   bool
	}{
		{0, 0, true},
		{5 * time.Second, 0.1, false},
		{10 * time.Second, 0.2, true},
		{15 * time.Second, 0.3, false},
		{25 * time.Second, 0.4, true},
	}
	for _, s := range steps {
		if got := r.Sample(57, s.lon, t0.Add(s.offset)); got != s.want {
			t.Errorf("Sample at %v == %v, want %v", s.offset, got, s.want)
		}
	}

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatal("expected one file, got", len(files))
	}
	if !files[0].closed {
		t.Error("file not closed")
	}

	doc, err := reader.Read(&files[0].Buffer)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Tracks) != 1 || doc.Tracks[0].Name != "Out & back" {
		t.Fatal("bad tracks", doc.Tracks)
	}
	pts := doc.FlattenTracks()
	if len(pts) != 3 {
		t.Fatal("expected 3 points, got", len(pts))
	}
	if pts[1].Lon != 0.2 || !pts[2].Time.Equal(t0.Add(25*time.Second)) {
		t.Error("bad points", pts)
	}

	// Flushing twice is harmless; sampling again starts a new file.
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if !r.Sample(57, 1, t0.Add(time.Second)) {
		t.Error("first sample of a new file should be recorded")
	}
	if len(files) != 2 {
		t.Error("expected a second file, got", len(files))
	}
}

func TestRecorderOpenError(t *testing.T) {
	r := &Recorder{
		Opener: func(time.Time) (io.WriteCloser, error) {
			return nil, errors.New("disk full")
		},
	}
	if r.Sample(0, 0, time.Now()) {
		t.Error("sample should not be recorded without a file")
	}
	if err := r.Flush(); err != nil {
		t.Error("flush without a file should succeed, got", err)
	}
}
