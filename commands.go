package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"mandelbrot/coordinator"
	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/palette"
	"mandelbrot/render"
	"mandelbrot/worker"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the Mandelbrot set on this machine",
		Args:  cobra.ExactArgs(0),
		RunE:  runRender,
	}

	flags := cmd.Flags()
	flags.Int("iterations", mandelbrot.DefaultMaxIterations, "maximum iterations per point")
	flags.Int("width", mandelbrot.DefaultWidth, "image width in pixels")
	flags.Int("height", 0, "image height in pixels, 0 keeps a 3:2 aspect")
	flags.String("start-color", palette.DefaultStartColor, "first gradient color as 6 hex digits")
	flags.String("end-color", palette.DefaultEndColor, "last gradient color as 6 hex digits")
	flags.String("in-set-color", palette.DefaultInSetColor, "color of points inside the set")
	flags.Int("steps", palette.DefaultSteps, "number of percentile buckets")
	flags.Int("workers", 0, "goroutines computing rows, 0 uses every CPU")
	flags.String("output", "mandelbrot.png", "image file to write")
	flags.String("format", "", "image format (png, jpeg, bmp, tiff), defaults to the output extension")

	return cmd
}

type renderOptions struct {
	format    render.Format
	formatRaw string
	mandel    mandelbrot.Settings
	output    string
	palette   palette.Settings
	workers   int
}

func readRenderOptions(cmd *cobra.Command) (renderOptions, error) {
	var opts renderOptions
	var err error
	flags := cmd.Flags()

	if opts.mandel.MaxIterations, err = flags.GetInt("iterations"); err != nil {
		return opts, err
	}
	if opts.mandel.Width, err = flags.GetInt("width"); err != nil {
		return opts, err
	}
	if opts.mandel.Height, err = flags.GetInt("height"); err != nil {
		return opts, err
	}
	if opts.palette.StartColor, err = flags.GetString("start-color"); err != nil {
		return opts, err
	}
	if opts.palette.EndColor, err = flags.GetString("end-color"); err != nil {
		return opts, err
	}
	if opts.palette.InSetColor, err = flags.GetString("in-set-color"); err != nil {
		return opts, err
	}
	if opts.palette.Steps, err = flags.GetInt("steps"); err != nil {
		return opts, err
	}
	if opts.workers, err = flags.GetInt("workers"); err != nil {
		return opts, err
	}
	if opts.output, err = flags.GetString("output"); err != nil {
		return opts, err
	}
	if opts.formatRaw, err = flags.GetString("format"); err != nil {
		return opts, err
	}
	return opts, nil
}

// resolve verifies every option, falling back to the output file extension for the format
func (o *renderOptions) resolve() error {
	if o.mandel.MaxIterations <= 0 || o.mandel.Width <= 0 {
		return fmt.Errorf("iterations %d, width %d: %w", o.mandel.MaxIterations, o.mandel.Width, mandelbrot.ErrInvalidDimension)
	}
	if err := o.mandel.Verify(); err != nil {
		return err
	}
	if o.palette.Steps <= 0 {
		return fmt.Errorf("steps %d: %w", o.palette.Steps, mandelbrot.ErrInvalidDimension)
	}
	if err := o.palette.Verify(); err != nil {
		return err
	}
	if o.workers < 0 {
		return fmt.Errorf("workers %d: %w", o.workers, mandelbrot.ErrInvalidDimension)
	}
	if o.workers == 0 {
		o.workers = runtime.NumCPU()
	}

	name := o.formatRaw
	if name == "" {
		name = filepath.Ext(o.output)
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		return err
	}
	o.format = format
	return nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	logger, err := newLogger("Render")
	if err != nil {
		return err
	}

	opts, err := readRenderOptions(cmd)
	if err != nil {
		return err
	}
	if err := opts.resolve(); err != nil {
		return err
	}
	logger.Debugf("Mandelbrot %s", opts.mandel)
	logger.Debugf("Palette %s", opts.palette)

	startTime := time.Now()
	var raster []int
	if opts.workers == 1 {
		raster, err = mandelbrot.Build(opts.mandel.MaxIterations, opts.mandel.Width, opts.mandel.Height)
	} else {
		raster, err = mandelbrot.BuildParallel(opts.mandel.MaxIterations, opts.mandel.Width, opts.mandel.Height, opts.workers)
	}
	if err != nil {
		return err
	}
	logger.Infof("Computed %dx%d points with %d workers in %s", opts.mandel.Width, opts.mandel.Height, opts.workers, time.Since(startTime))

	startTime = time.Now()
	p, err := palette.New(raster, opts.palette)
	if err != nil {
		return err
	}
	logger.Infof("Built palette with %d colors in %s", len(p.Colors), time.Since(startTime))

	surface, err := render.NewImageSurface(opts.mandel.Width, opts.mandel.Height, opts.output, opts.format)
	if err != nil {
		return err
	}
	if err := render.Paint(raster, opts.mandel.Width, opts.mandel.Height, p, surface); err != nil {
		return err
	}
	logger.Infof("Saved %s", opts.output)

	return nil
}

func runCoordinator(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	logger, err := newLogger("CoordinatorCommand")
	if err != nil {
		return err
	}

	settingsFile, err := cmd.Flags().GetString("settings")
	if err != nil {
		return err
	}
	settings, err := coordinator.NewSettings(settingsFile)
	misc.CheckError(err, logger, misc.Fatal)
	if cmd.Flags().Changed("verbosity") {
		settings.Verbosity = verbosity
	}

	c, err := coordinator.NewCoordinator(settings)
	misc.CheckError(err, logger, misc.Fatal)
	logger.Infof("Waiting for workers at %s", settings.ServerAddress)

	select {
	case <-c.Done():
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
	if err := c.Err(); err != nil {
		return err
	}
	logger.Infof("Saved %s", c.ImagePath())

	// Wait for workers to shut down
	c.Wait()
	return nil
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	logger, err := newLogger("WorkerCommand")
	if err != nil {
		return err
	}

	settingsFile, err := cmd.Flags().GetString("settings")
	if err != nil {
		return err
	}
	settings, err := worker.NewSettings(settingsFile)
	misc.CheckError(err, logger, misc.Fatal)
	if cmd.Flags().Changed("verbosity") {
		settings.Verbosity = verbosity
	}

	w, err := worker.NewWorker(settings)
	misc.CheckError(err, logger, misc.Fatal)

	w.Wait()
	logger.Infof("Completed %d tasks", w.TasksCompleted())
	return nil
}
