// Command nuimages queries a nuImages dataset and renders its annotations.
//
// Settings come from an optional YAML file (-config) and from flags; a flag
// explicitly set on the command line wins over the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/maruel/nuimages/internal/colormap"
	"github.com/maruel/nuimages/internal/config"
	"github.com/maruel/nuimages/internal/dataset"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "nuimages: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

const usage = `usage: nuimages [flags] <command> [args]

commands:
  list-attributes
  list-cameras
  list-categories [sample...]
  list-logs
  list-sample <sample>
  keyframe <sample> [camera|lidar]
  get <table> <token>
  render [flags] <sample_data>
  schema [table]

flags:
`

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("nuimages", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "YAML configuration file")
	dataRoot := fs.String("data-root", "", "Dataset root directory")
	version := fs.String("version", "", "Dataset version, e.g. v1.0-mini")
	lazy := fs.Bool("lazy", true, "Load each table on first use")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	verbose := fs.Bool("v", false, "Shorthand for -log-level debug")
	colorsPath := fs.String("colors", "", "YAML file mapping category names to [r, g, b], applied over the configured palette")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-root":
			cfg.DataRoot = *dataRoot
		case "version":
			cfg.Version = *version
		case "lazy":
			cfg.Lazy = *lazy
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(newLogger(stderr, level))

	store, err := dataset.Open(cfg.DataRoot, cfg.Version, &dataset.Options{Lazy: cfg.Lazy})
	if err != nil {
		return err
	}
	palette := cfg.Palette()
	if *colorsPath != "" {
		if palette, err = colormap.LoadFile(*colorsPath, palette); err != nil {
			return err
		}
	}
	c := &cli{store: store, cfg: cfg, palette: palette, out: stdout, errOut: stderr}
	return c.dispatch(fs.Arg(0), fs.Args()[1:])
}

// newLogger returns a tint handler writing to w, colored when w is a terminal.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	ll := &slog.LevelVar{}
	ll.Set(level)
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		w = colorable.NewColorable(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "dur" {
				if d, ok := a.Value.Any().(time.Duration); ok && d == 0 {
					return slog.Attr{}
				}
			}
			return a
		},
	}))
}
