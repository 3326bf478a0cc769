// Command fractalrender renders one fractal frame to a PNG file.
//
//	fractalrender -fractal julia -params '{"cr": -0.7, "ci": 0.27015}' -o julia.png
//
// View flags that are not given keep the fractal's default view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/gogpu/gg"
	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

type options struct {
	frame       render.Frame
	output      string
	antialias   float64
	supersample int
	workers     int
	verbose     bool
}

func parseOptions(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("fractalrender", flag.ContinueOnError)
	fs.SetOutput(output)

	fractal := fs.String("fractal", "mandelbrot", "fractal to render")
	width := fs.Int("width", 1200, "image width")
	height := fs.Int("height", 400, "image height")
	params := fs.String("params", "", "parameters as a JSON object, or a file holding one")
	antialias := fs.Float64("antialias", 0, "9x antialias sample spacing in pixels, 0 disables")
	supersample := fs.Int("supersample", 1, "render this many times larger and downscale")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "render goroutines")
	verbose := fs.Bool("v", false, "log render diagnostics to stderr")
	out := fs.String("o", "fractal.png", "output file")

	zoom := fs.Float64("zoom", 0, "plane width, or camera zoom for spatial fractals")
	x := fs.Float64("x", 0, "view centre x")
	y := fs.Float64("y", 0, "view centre y")
	z := fs.Float64("z", 0, "view centre z")
	yaw := fs.Float64("yaw", 0, "camera yaw in degrees")
	pitch := fs.Float64("pitch", 0, "camera pitch in degrees")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	kind, err := programs.ParseKind(*fractal)
	if err != nil {
		return options{}, err
	}
	p, err := programs.Get(kind)
	if err != nil {
		return options{}, err
	}
	parameters, err := programs.LoadParameters(*params)
	if err != nil {
		return options{}, err
	}
	if *width <= 0 || *height <= 0 {
		return options{}, fmt.Errorf("%w: %dx%d", render.ErrEmptySurface, *width, *height)
	}
	if *supersample < 1 {
		return options{}, fmt.Errorf("supersample must be at least 1, got %d", *supersample)
	}

	u := programs.DefaultUniforms(p)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "zoom":
			u.Zoom = *zoom
		case "x":
			u.Center[0] = *x
		case "y":
			u.Center[1] = *y
		case "z":
			u.Center[2] = *z
		case "yaw":
			u.Yaw = *yaw
		case "pitch":
			u.Pitch = *pitch
		}
	})
	u.Clamp(p)

	return options{
		frame: render.Frame{
			Program:    p,
			Uniforms:   u,
			Parameters: parameters,
			Width:      *width,
			Height:     *height,
		},
		output:      *out,
		antialias:   *antialias,
		supersample: *supersample,
		workers:     *workers,
		verbose:     *verbose,
	}, nil
}

func run(ctx context.Context, opts options) error {
	renderOpts := []render.Option{render.WithWorkers(opts.workers)}
	if opts.antialias > 0 {
		renderOpts = append(renderOpts, render.WithAntialias(opts.antialias))
	}
	renderer, err := render.NewRenderer(renderOpts...)
	if err != nil {
		return err
	}

	f := opts.frame
	f.Width *= opts.supersample
	f.Height *= opts.supersample

	var progress render.Progress
	done := make(chan struct{})
	defer close(done)
	go reportProgress(&progress, done)

	start := time.Now()
	pix := gg.NewPixmap(f.Width, f.Height)
	if err := renderer.Render(ctx, f, pix, &progress); err != nil {
		return fmt.Errorf("render %v: %w", f.Program.Name, err)
	}
	render.Logger().Info("rendered",
		"fractal", f.Program.Name,
		"size", [2]int{f.Width, f.Height},
		"duration", time.Since(start),
	)

	pix = render.Downscale(pix, opts.frame.Width, opts.frame.Height)
	if err := pix.SavePNG(opts.output); err != nil {
		return fmt.Errorf("save %v: %w", opts.output, err)
	}
	return nil
}

func reportProgress(progress *render.Progress, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			render.Logger().Info("progress", "done", fmt.Sprintf("%.0f%%", progress.Fraction()*100))
		case <-done:
			return
		}
	}
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	if opts.verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatal(err)
	}
}
