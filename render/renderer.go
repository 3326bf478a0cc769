// Package render evaluates fractal programs over a pixel surface.
//
// A Session owns the mutable view of one explorer. A Renderer turns an
// immutable Frame snapshot of a session into pixels, spreading rows over
// worker goroutines. A Loop re-renders on demand and drops frames that a
// newer input made stale.
package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/stewi1014/fractalexplorer/programs"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoWorkers    = errors.New("no render workers available")
	ErrEmptySurface = errors.New("render surface has no pixels")
)

// Frame is everything needed to render one image. It is a value copy, so
// input handled while it renders never affects it.
type Frame struct {
	Program    programs.Program
	Uniforms   programs.Uniforms
	Parameters programs.Parameters
	Width      int
	Height     int
	// Generation increases with every session change.
	Generation uint64
}

type Option func(*Renderer)

// WithWorkers sets how many rows bands render at once.
func WithWorkers(n int) Option {
	return func(r *Renderer) { r.workers = n }
}

// WithRowsPerTask sets the height of the band each task renders.
func WithRowsPerTask(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.rowsPerTask = n
		}
	}
}

// WithAntialias enables 9 sample antialiasing with samples offset pixels apart.
// Zero disables it.
func WithAntialias(offset float64) Option {
	return func(r *Renderer) { r.antialias = offset }
}

type Renderer struct {
	workers     int
	rowsPerTask int
	antialias   float64
}

// NewRenderer returns a renderer using GOMAXPROCS workers unless an option
// says otherwise. It fails with ErrNoWorkers if fewer than one worker is
// configured.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		workers:     runtime.GOMAXPROCS(0),
		rowsPerTask: 8,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		return nil, fmt.Errorf("%w: %d workers configured", ErrNoWorkers, r.workers)
	}

	Logger().Info("renderer ready", "workers", r.workers, "rowsPerTask", r.rowsPerTask, "antialias", r.antialias)
	return r, nil
}

func (r *Renderer) Workers() int {
	return r.workers
}

// Render evaluates f into dst, which must be f.Width by f.Height.
// It returns ctx's error if ctx ends first; dst is then partially written.
// progress may be nil.
func (r *Renderer) Render(ctx context.Context, f Frame, dst *gg.Pixmap, progress *Progress) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptySurface, f.Width, f.Height)
	}
	if dst.Width() != f.Width || dst.Height() != f.Height {
		return fmt.Errorf("surface is %dx%d, frame is %dx%d", dst.Width(), dst.Height(), f.Width, f.Height)
	}

	pixel := f.Program.PixelFunc()
	if r.antialias > 0 {
		pixel = AntiAlias9x(pixel, r.antialias)
	}
	progress.start(int64(f.Height))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for y0 := 0; y0 < f.Height; y0 += r.rowsPerTask {
		if gctx.Err() != nil {
			break
		}
		y1 := min(y0+r.rowsPerTask, f.Height)

		g.Go(func() (err error) {
			defer catchPanic(&err)
			for y := y0; y < y1; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for x := 0; x < f.Width; x++ {
					c := pixel(f.Uniforms, f.Parameters, float64(x)+0.5, float64(y)+0.5, f.Width, f.Height)
					dst.SetPixel(x, y, gg.RGB(c[0], c[1], c[2]))
				}
				progress.add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func catchPanic(err *error) {
	if v := recover(); v != nil {
		perr, ok := v.(error)
		if !ok {
			perr = fmt.Errorf("panic: %v", v)
		}
		*err = fmt.Errorf("%w\n%v", perr, string(debug.Stack()))
	}
}

// Progress counts rendered rows. The zero value is ready to use and all
// methods accept a nil receiver.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

func (p *Progress) start(total int64) {
	if p == nil {
		return
	}
	p.done.Store(0)
	p.total.Store(total)
}

func (p *Progress) add(n int64) {
	if p == nil {
		return
	}
	p.done.Add(n)
}

// Fraction reports completion in [0, 1].
func (p *Progress) Fraction() float64 {
	if p == nil {
		return 0
	}
	total := p.total.Load()
	if total == 0 {
		return 0
	}
	return float64(p.done.Load()) / float64(total)
}
