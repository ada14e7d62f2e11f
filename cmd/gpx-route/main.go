package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"calmh.dev/gpx-route/cmd/gpx-route/consolidate"
	"calmh.dev/gpx-route/cmd/gpx-route/navigate"
	"calmh.dev/gpx-route/cmd/gpx-route/route"
	"calmh.dev/gpx-route/cmd/gpx-route/summarize"
	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"golang.org/x/exp/slog"
)

type CLI struct {
	LogLevel string `default:"info" enum:"debug,info,warn,error" env:"GPX_ROUTE_LOG_LEVEL" help:"Log level (${enum})"`

	Route     route.CLI     `cmd:"" help:"Print the path to follow in a GPX file"`
	Summarize summarize.CLI `cmd:"" help:"Describe the candidate paths in a GPX file"`
	Navigate  navigate.CLI  `cmd:"" help:"Simulate movement along the path in a GPX file"`

	ConsolidateRaw consolidate.CLI `cmd:"" help:"Consolidate raw NMEA files written by navigate"`
}

func main() {
	log.SetFlags(0)

	var cli CLI
	kctx := kong.Parse(&cli, kong.Description("Resolve the path to follow in a GPX file and navigate along it."))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	kctx.BindTo(ctx, (*context.Context)(nil))

	logger := newLogger(os.Stderr, cli.LogLevel)
	if err := kctx.Run(logger); err != nil {
		log.Fatal(err)
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var h slog.Handler
	if fd, ok := w.(interface{ Fd() uintptr }); ok && isatty.IsTerminal(fd.Fd()) {
		h = tint.NewHandler(w, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
