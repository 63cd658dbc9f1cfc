package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/maruel/nuimages/internal/colormap"
	"github.com/maruel/nuimages/internal/config"
	"github.com/maruel/nuimages/internal/dataset"
	dberrors "github.com/maruel/nuimages/internal/errors"
	"github.com/maruel/nuimages/internal/models"
	"github.com/maruel/nuimages/internal/render"
)

type cli struct {
	store   *dataset.Store
	cfg     *config.Config
	palette colormap.Map
	out     io.Writer
	errOut  io.Writer
}

func (c *cli) dispatch(cmd string, args []string) error {
	switch cmd {
	case "list-attributes":
		return c.listAttributes(args)
	case "list-cameras":
		return c.listCameras(args)
	case "list-categories":
		return c.listCategories(args)
	case "list-logs":
		return c.listLogs(args)
	case "list-sample":
		return c.listSample(args)
	case "keyframe":
		return c.keyFrame(args)
	case "get":
		return c.get(args)
	case "render":
		return c.render(args)
	case "schema":
		return c.schema(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func noArgs(cmd string, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%s: unexpected arguments: %v", cmd, args)
	}
	return nil
}

func (c *cli) listAttributes(args []string) error {
	if err := noArgs("list-attributes", args); err != nil {
		return err
	}
	stats, err := c.store.ListAttributes()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%-11s %-24.24s %-48.48s\n", "Annotations", "Name", "Description")
	for _, s := range stats {
		fmt.Fprintf(c.out, "%11d %-24.24s %-48.48s\n", s.Annotations, s.Name, s.Description)
	}
	return nil
}

func (c *cli) listCameras(args []string) error {
	if err := noArgs("list-cameras", args); err != nil {
		return err
	}
	stats, err := c.store.ListCameras()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%-7s %-6s %-24s\n", "Cameras", "Samples", "Channel")
	for _, s := range stats {
		fmt.Fprintf(c.out, "%7d %6d %-24s\n", s.CalibratedSensors, s.Samples, s.Channel)
	}
	return nil
}

func (c *cli) listCategories(args []string) error {
	var samples []string
	if len(args) != 0 {
		samples = args
	}
	stats, err := c.store.ListCategories(samples)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%-11s %-12s %-24.24s %-48.48s\n", "Object_anns", "Surface_anns", "Name", "Description")
	for _, s := range stats {
		fmt.Fprintf(c.out, "%11d %12d %-24.24s %-48.48s\n", s.ObjectAnns, s.SurfaceAnns, s.Name, s.Description)
	}
	return nil
}

func (c *cli) listLogs(args []string) error {
	if err := noArgs("list-logs", args); err != nil {
		return err
	}
	stats, err := c.store.ListLogs()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%-6s %-29s %-24s\n", "Samples", "Log", "Location")
	for _, s := range stats {
		fmt.Fprintf(c.out, "%6d %-29s %-24s\n", s.Samples, s.Logfile, s.Location)
	}
	return nil
}

func (c *cli) listSample(args []string) error {
	if len(args) != 1 {
		return errors.New("list-sample: expected <sample>")
	}
	content, err := c.store.ListSampleContent(args[0])
	if err != nil {
		return err
	}
	for _, m := range content {
		fmt.Fprintf(c.out, "\nListing sample_datas for %s...\n", m.Modality)
		fmt.Fprint(c.out, "Rel. time\tSample_data token\n")
		for _, e := range m.Entries {
			fmt.Fprintf(c.out, "%9.1f\t%s\n", e.RelTime, e.Token)
		}
	}
	return nil
}

func (c *cli) keyFrame(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("keyframe: expected <sample> [camera|lidar]")
	}
	modality := models.ModalityCamera
	if len(args) == 2 {
		modality = models.Modality(args[1])
	}
	token, err := c.store.SampleToKeyFrame(args[0], modality)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, token)
	return err
}

func (c *cli) get(args []string) error {
	if len(args) != 2 {
		return errors.New("get: expected <table> <token>")
	}
	r, err := c.store.Get(args[0], args[1])
	if err != nil {
		return err
	}
	return c.writeJSON(r)
}

func (c *cli) schema(args []string) error {
	switch len(args) {
	case 0:
		all := make(map[string]any, len(models.TableNames))
		for _, name := range models.TableNames {
			s, err := models.Schema(name)
			if err != nil {
				return err
			}
			all[name] = s
		}
		return c.writeJSON(all)
	case 1:
		if !models.IsTable(args[0]) {
			return dberrors.NotFound(dberrors.ErrUnknownTable, "table %s not found", args[0])
		}
		s, err := models.Schema(args[0])
		if err != nil {
			return err
		}
		return c.writeJSON(s)
	default:
		return errors.New("schema: expected at most one table")
	}
}

func (c *cli) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = c.out.Write(data)
	return err
}

func (c *cli) render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	withAttributes := fs.Bool("attributes", false, "Append attribute names to object labels")
	noAnnotations := fs.Bool("no-annotations", false, "Render the bare image")
	scale := fs.Float64("scale", c.cfg.RenderScale, "Display figure scale")
	out := fs.String("out", "", "Output PNG, defaults to <sample_data>.png")
	plotPath := fs.String("plot", "", "Also save the display figure to this file (png, svg, pdf)")
	objects := fs.String("objects", "", "Comma separated object_ann tokens to draw, default all")
	surfaces := fs.String("surfaces", "", "Comma separated surface_ann tokens to draw, default all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("render: expected <sample_data>")
	}
	token := fs.Arg(0)
	opts := &render.Options{
		WithAnnotations: !*noAnnotations,
		WithAttributes:  *withAttributes,
		ObjectTokens:    splitTokens(*objects),
		SurfaceTokens:   splitTokens(*surfaces),
		RenderScale:     *scale,
	}
	img, err := render.New(c.store, c.palette).RenderImage(token, opts)
	if err != nil {
		return err
	}
	if *out == "" {
		*out = token + ".png"
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if *plotPath != "" {
		if err := render.Display(&render.PlotSurface{Path: *plotPath}, token, img, opts.RenderScale); err != nil {
			return fmt.Errorf("failed to save figure: %w", err)
		}
	}
	fmt.Fprintln(c.out, *out)
	return nil
}

func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
