// Package navigate simulates movement along a resolved path and reports
// the simulated position as NMEA 0183 sentences.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calmh.dev/gpx-route/internal/gpx/document"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/thejerf/suture/v4"
	"golang.org/x/exp/slog"
)

var (
	simSentences = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "navigate",
		Name:      "sentences_total",
	})
	simRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "navigate",
		Name:      "recorded_positions_total",
	})
	simLaps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "navigate",
		Name:      "completed_laps_total",
	})
	simPosition = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gpxroute",
		Subsystem: "navigate",
		Name:      "position",
	}, []string{"axis"})
	simCourse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpxroute",
		Subsystem: "navigate",
		Name:      "course_degrees",
	})
	simCovered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpxroute",
		Subsystem: "navigate",
		Name:      "covered_distance_nm",
	})
)

// ErrInvalidMotion is returned for a simulator that would never move or
// never tick.
var ErrInvalidMotion = errors.New("invalid motion")

// A Sampler records simulated positions, for example into a GPX track.
type Sampler interface {
	Sample(lat, lon float64, when time.Time) bool
	Flush() error
}

// Simulator walks a path in real time and emits RMC and GGA sentences on
// Output once per Tick.
type Simulator struct {
	Coordinates []document.Coordinate
	SpeedKnots  float64
	Tick        time.Duration
	Loop        bool
	Output      chan<- string
	Sampler     Sampler
	Progress    func(passed, total int)
	Logger      *slog.Logger

	walker *Walker
	last   time.Time
	now    func() time.Time
}

func (s *Simulator) String() string {
	return fmt.Sprintf("simulator(%d points)@%p", len(s.Coordinates), s)
}

// Validate checks that the simulator can make progress.
func (s *Simulator) Validate() error {
	if s.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, not %v", ErrInvalidMotion, s.Tick)
	}
	if !(s.SpeedKnots > 0) {
		return fmt.Errorf("%w: speed must be positive, not %v", ErrInvalidMotion, s.SpeedKnots)
	}
	return nil
}

// Serve runs until the path is complete, then terminates the supervisor
// tree. With Loop set it starts over from the first point instead.
func (s *Simulator) Serve(ctx context.Context) error {
	if len(s.Coordinates) == 0 {
		s.logger().Warn("Empty path, nothing to navigate")
		return suture.ErrTerminateSupervisorTree
	}
	// Restarting would not help.
	if err := s.Validate(); err != nil {
		s.logger().Error("Cannot navigate", "error", err)
		return suture.ErrTerminateSupervisorTree
	}
	if s.Sampler != nil {
		defer s.Sampler.Flush()
	}

	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()

	// Resume where a previous run left off when restarted by the
	// supervisor.
	if s.walker == nil {
		s.reset()
	}
	s.last = s.clock()

	for {
		done, err := s.step(ctx, s.clock())
		if err != nil {
			return err
		}
		if done {
			simLaps.Inc()
			if !s.Loop {
				s.logger().Info("Reached end of path", "distance", fmt.Sprintf("%.2f NM", s.walker.Covered()))
				return suture.ErrTerminateSupervisorTree
			}
			s.logger().Info("Reached end of path, starting over")
			s.reset()
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// step advances the walker to now and emits the resulting position.
func (s *Simulator) step(ctx context.Context, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	done := s.walker.Advance(now.Sub(s.last))
	s.last = now

	lat, lon, course := s.walker.Position()
	speed := s.SpeedKnots
	if done {
		speed = 0
	}
	fix := Fix{Lat: lat, Lon: lon, Speed: speed, Course: course, When: now}

	for _, line := range []string{RMC(fix), GGA(fix)} {
		select {
		case s.Output <- line:
			simSentences.Inc()
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	if s.Sampler != nil && s.Sampler.Sample(lat, lon, now) {
		simRecorded.Inc()
	}
	if s.Progress != nil {
		s.Progress(s.walker.Leg(), s.walker.Len()-1)
	}

	simPosition.WithLabelValues("lat").Set(lat)
	simPosition.WithLabelValues("lon").Set(lon)
	simCourse.Set(course)
	simCovered.Set(s.walker.Covered())

	return done, nil
}

func (s *Simulator) reset() {
	s.walker = NewWalker(s.Coordinates, s.SpeedKnots)
}

func (s *Simulator) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Simulator) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
