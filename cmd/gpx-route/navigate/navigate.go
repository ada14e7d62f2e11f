package navigate

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"calmh.dev/gpx-route/internal/gpx/document"
	"calmh.dev/gpx-route/internal/gpx/reader"
	"calmh.dev/gpx-route/internal/gpx/writer"
	sim "calmh.dev/gpx-route/internal/navigate"
	"calmh.dev/gpx-route/internal/resolve"
	"calmh.dev/gpx-route/internal/selection"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/thejerf/suture/v4"
	"golang.org/x/exp/slog"
)

type CLI struct {
	File   string `arg:"" type:"existingfile" help:"GPX file to navigate"`
	Select string `help:"Candidate to use when the file is ambiguous (waypoints, route, track)" placeholder:"LABEL" env:"GPX_ROUTE_SELECT"`

	Speed float64       `default:"6" help:"Simulated speed over ground (knots)" group:"Simulation"`
	Tick  time.Duration `default:"1s" help:"Time between position reports" group:"Simulation"`
	Loop  bool          `help:"Start over from the first point at the end of the path" group:"Simulation"`

	OutputStdout bool `help:"Write NMEA sentences to standard output" group:"Output"`

	ForwardAllTCPListen string `default:":2000" help:"TCP listen address (all NMEA)" placeholder:"ADDR" group:"TCP output"`
	ForwardRMCTCPListen string `name:"forward-rmc-tcp-listen" help:"TCP listen address (RMC only)" placeholder:"ADDR" group:"TCP output"`

	ForwardUDP              []string      `help:"UDP output destination address" placeholder:"ADDR" group:"UDP output"`
	ForwardUDPMaxPacketSize int           `help:"Maximum UDP payload size" default:"1472" group:"UDP output"`
	ForwardUDPMaxDelay      time.Duration `help:"Maximum UDP buffer delay" default:"1s" group:"UDP output"`

	OutputGPXPattern        string        `help:"Record the simulated trip, file naming pattern, see https://golang.org/pkg/time/#Time.Format" placeholder:"PATTERN" group:"GPX File Output"`
	OutputGPXSampleInterval time.Duration `help:"Time between track points" default:"10s" group:"GPX File Output"`

	OutputRawPattern      string        `help:"Record raw NMEA, file naming pattern, see https://golang.org/pkg/time/#Time.Format" placeholder:"PATTERN" group:"Raw NMEA File Output"`
	OutputRawBufferSize   int           `default:"131072" help:"Write buffer for output file" group:"Raw NMEA File Output"`
	OutputRawUncompressed bool          `help:"Write uncompressed NMEA (default is gzipped)" group:"Raw NMEA File Output"`
	OutputRawTimeWindow   time.Duration `default:"24h" help:"How often to create a new raw file" group:"Raw NMEA File Output"`

	PrometheusMetricsListen string `default:"127.0.0.1:9140" env:"GPX_ROUTE_METRICS_LISTEN" help:"HTTP listen address for Prometheus metrics endpoint" placeholder:"ADDR" group:"Metrics"`
}

// Validate is called by kong after parsing, before the file is opened.
func (cli *CLI) Validate() error {
	s := &sim.Simulator{SpeedKnots: cli.Speed, Tick: cli.Tick}
	return s.Validate()
}

func (cli *CLI) Run(ctx context.Context, logger *slog.Logger) error {
	logger = logger.With("module", "navigate")

	chooser, err := selection.ForTerminal(cli.Select, os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	o := &resolve.Opener{
		Parser:    resolve.ParserFunc(reader.ReadFile),
		Chooser:   chooser,
		Requester: &navigator{cli: cli, logger: logger, stdout: os.Stdout},
		Logger:    logger,
	}
	ok, err := o.Open(ctx, cli.File)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("No path selected, nothing to navigate")
	}
	return nil
}

// navigator runs the simulation service tree for the requested path
// until it completes or ctx is cancelled.
type navigator struct {
	cli    *CLI
	logger *slog.Logger
	stdout io.Writer
}

func (n *navigator) RequestRoute(ctx context.Context, coords []document.Coordinate) error {
	cli := n.cli
	logger := n.logger

	if err := cli.Validate(); err != nil {
		return err
	}

	sup := suture.New("navigate", suture.Spec{
		EventHook: func(ev suture.Event) {
			logger.Error(ev.String())
		},
	})

	output := make(chan string, 4096)
	tee := NewTee("main", output)
	sup.Add(tee)

	if cli.OutputStdout {
		sup.Add(linesTo(tee.Output(), n.stdout, "stdout"))
	}

	if cli.ForwardAllTCPListen != "" {
		logger.Info("Forwarding NMEA to incoming connections", "addr", cli.ForwardAllTCPListen)
		sup.Add(forwardTCP(tee.Output(), cli.ForwardAllTCPListen))
	}

	if cli.ForwardRMCTCPListen != "" {
		rmc := NewFilteredTee("RMC", tee.Output(), "$GPRMC")
		sup.Add(rmc)
		logger.Info("Forwarding RMC to incoming connections", "addr", cli.ForwardRMCTCPListen)
		sup.Add(forwardTCP(rmc.Output(), cli.ForwardRMCTCPListen))
	}

	if len(cli.ForwardUDP) > 0 {
		logger.Info("Forwarding NMEA to UDP", "addrs", cli.ForwardUDP)
		sup.Add(forwardUDP(tee.Output(), cli.ForwardUDP, cli.ForwardUDPMaxPacketSize, cli.ForwardUDPMaxDelay, logger))
	}

	if cli.OutputRawPattern != "" {
		logger.Info("Writing raw files", "pattern", cli.OutputRawPattern)
		sup.Add(collectRAW(cli.OutputRawPattern, cli.OutputRawBufferSize, cli.OutputRawTimeWindow, !cli.OutputRawUncompressed, tee.Output(), logger))
	}

	if cli.PrometheusMetricsListen != "" {
		url := &url.URL{Scheme: "http", Host: cli.PrometheusMetricsListen, Path: "/metrics"}
		logger.Info("Exporting metrics", "url", url.String())
		sup.Add(&prometheusListener{cli.PrometheusMetricsListen})
	}

	s := &sim.Simulator{
		Coordinates: coords,
		SpeedKnots:  cli.Speed,
		Tick:        cli.Tick,
		Loop:        cli.Loop,
		Output:      output,
		Logger:      logger,
	}

	if cli.OutputGPXPattern != "" {
		logger.Info("Recording GPX track", "pattern", cli.OutputGPXPattern)
		s.Sampler = &writer.Recorder{
			Opener: func(t time.Time) (io.WriteCloser, error) {
				return newGPXFile(logger, cli.OutputGPXPattern, t)
			},
			SampleInterval: cli.OutputGPXSampleInterval,
			Name:           filepath.Base(cli.File),
			Logger:         logger,
		}
	}

	if bar := newProgress(os.Stderr, len(coords)); bar != nil {
		s.Progress = bar.Set
		defer bar.Finish()
	}

	logger.Info("Starting navigation", "points", len(coords), "speed", cli.Speed)
	sup.Add(s)

	err := sup.Serve(ctx)
	if errors.Is(err, suture.ErrTerminateSupervisorTree) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var gpxFilesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gpxroute",
	Subsystem: "gpx",
	Name:      "files_created_total",
})

func newGPXFile(logger *slog.Logger, pattern string, t time.Time) (io.WriteCloser, error) {
	name := t.UTC().Format(pattern)
	logger.Info("Creating new GPX track", "name", name)
	gpxFilesCreatedTotal.Inc()
	_ = os.MkdirAll(filepath.Dir(name), 0o755)
	return os.Create(name)
}
